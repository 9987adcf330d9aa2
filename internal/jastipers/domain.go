// Package jastipers is the public directory of shopping agents.
package jastipers

import (
	"sort"
	"strings"
	"time"
)

// Collection holds directory records.
const Collection = "jastipers"

// Jastiper is a directory record. TotalOrders and CompletedOrders are
// entered by hand and not derived from period data.
type Jastiper struct {
	ID                     string    `json:"id"`
	Name                   string    `json:"name"`
	ImageURL               string    `json:"imageUrl"`
	FacebookLink           string    `json:"facebookLink"`
	PhoneNumber            string    `json:"phoneNumber"`
	Description            string    `json:"description"`
	IsVerified             bool      `json:"isVerified"`
	Rating                 float64   `json:"rating"`
	TotalOrders            int       `json:"totalOrders"`
	CompletedOrders        int       `json:"completedOrders"`
	VerifiedByFacebookLink string    `json:"verifiedByFacebookLink"`
	CreatedAt              time.Time `json:"createdAt"`
	UpdatedAt              time.Time `json:"updatedAt"`
}

// Input carries a new directory record.
type Input struct {
	Name         string
	ImageURL     string
	FacebookLink string
	PhoneNumber  string
	Description  string
}

// Patch is a partial update of a directory record.
type Patch struct {
	Name            *string
	ImageURL        *string
	FacebookLink    *string
	PhoneNumber     *string
	Description     *string
	Rating          *float64
	TotalOrders     *int
	CompletedOrders *int
}

func (p Patch) fields() map[string]any {
	fields := make(map[string]any)
	set := func(key string, v *string) {
		if v != nil {
			fields[key] = strings.TrimSpace(*v)
		}
	}
	set("name", p.Name)
	set("imageUrl", p.ImageURL)
	set("facebookLink", p.FacebookLink)
	set("phoneNumber", p.PhoneNumber)
	set("description", p.Description)
	if p.Rating != nil {
		fields["rating"] = *p.Rating
	}
	if p.TotalOrders != nil {
		fields["totalOrders"] = *p.TotalOrders
	}
	if p.CompletedOrders != nil {
		fields["completedOrders"] = *p.CompletedOrders
	}
	return fields
}

// Sort orders understood by Search.
const (
	SortNewest = "newest"
	SortOldest = "oldest"
	SortName   = "name"
	SortOrders = "orders"
	SortRating = "rating"
)

// SearchParams filters the directory. A nil IsVerified matches both states.
type SearchParams struct {
	SearchTerm string
	IsVerified *bool
	SortBy     string
}

// Matches reports whether the record contains term in its name,
// description, phone number or facebook link, ignoring case.
func (j Jastiper) Matches(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	for _, field := range []string{j.Name, j.Description, j.PhoneNumber, j.FacebookLink} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

// filterAndSort is the in-memory half of Search: substring match plus the
// orderings the store cannot express.
func filterAndSort(list []Jastiper, params SearchParams) []Jastiper {
	out := make([]Jastiper, 0, len(list))
	for _, j := range list {
		if j.Matches(params.SearchTerm) {
			out = append(out, j)
		}
	}
	switch params.SortBy {
	case SortOrders:
		sort.SliceStable(out, func(i, k int) bool { return out[i].TotalOrders > out[k].TotalOrders })
	case SortRating:
		sort.SliceStable(out, func(i, k int) bool { return out[i].Rating > out[k].Rating })
	}
	return out
}

// Stats counts directory records by verification state.
type Stats struct {
	Total      int `json:"total"`
	Verified   int `json:"verified"`
	Unverified int `json:"unverified"`
}
