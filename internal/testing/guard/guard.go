package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("JASTIP_TEST_MODE") == "" {
			_ = os.Setenv("JASTIP_TEST_MODE", "1")
		}
	})
}
