package testing

import (
	"os"
	"sync"
	stdtesting "testing"
)

var once sync.Once

func ensureTestMode() {
	once.Do(func() {
		_ = os.Setenv("JASTIP_TEST_MODE", "1")
		if os.Getenv("GOOGLE_CLIENT_ID") == "" {
			_ = os.Setenv("GOOGLE_CLIENT_ID", "test-client.apps.googleusercontent.com")
		}
	})
}

func init() {
	ensureTestMode()
}

func TestMain(m *stdtesting.M) {
	ensureTestMode()
	os.Exit(m.Run())
}
