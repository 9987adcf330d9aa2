package jastipers

import (
	"context"
	"fmt"
	"strings"

	"github.com/jastipku/jastipku/internal/shared"
)

// Service implements the directory store.
type Service struct {
	repo Repository
}

// NewService constructs the service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create stores an unverified record with zero counters.
func (s *Service) Create(ctx context.Context, in Input) (string, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return "", fmt.Errorf("%w: nama jastiper wajib diisi", shared.ErrValidation)
	}
	record := Jastiper{
		Name:         name,
		ImageURL:     strings.TrimSpace(in.ImageURL),
		FacebookLink: strings.TrimSpace(in.FacebookLink),
		PhoneNumber:  strings.TrimSpace(in.PhoneNumber),
		Description:  strings.TrimSpace(in.Description),
	}
	id, err := s.repo.Create(ctx, record)
	if err != nil {
		return "", shared.StoreError("Gagal menambahkan jastiper", err)
	}
	return id, nil
}

// Get loads one record.
func (s *Service) Get(ctx context.Context, id string) (Jastiper, error) {
	j, err := s.repo.Get(ctx, id)
	if err != nil {
		return Jastiper{}, shared.StoreError("Gagal memuat jastiper", err)
	}
	return j, nil
}

// Update merges the supplied fields.
func (s *Service) Update(ctx context.Context, id string, patch Patch) error {
	fields := patch.fields()
	if name, ok := fields["name"]; ok && name == "" {
		return fmt.Errorf("%w: nama jastiper wajib diisi", shared.ErrValidation)
	}
	if len(fields) == 0 {
		return nil
	}
	if err := s.repo.Update(ctx, id, fields); err != nil {
		return shared.StoreError("Gagal memperbarui jastiper", err)
	}
	return nil
}

// SetVerified toggles verification. verifiedBy is the profile link of the
// customer vouching for the jastiper and is cleared on unverify.
func (s *Service) SetVerified(ctx context.Context, id string, verified bool, verifiedBy string) error {
	if !verified {
		verifiedBy = ""
	}
	fields := map[string]any{
		"isVerified":             verified,
		"verifiedByFacebookLink": strings.TrimSpace(verifiedBy),
	}
	if err := s.repo.Update(ctx, id, fields); err != nil {
		return shared.StoreError("Gagal memperbarui verifikasi jastiper", err)
	}
	return nil
}

// Delete removes a record.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return shared.StoreError("Gagal menghapus jastiper", err)
	}
	return nil
}

// Search filters on verification and orders by date or name in the store,
// then applies the text match and the order or rating sorts in memory.
func (s *Service) Search(ctx context.Context, params SearchParams) ([]Jastiper, error) {
	list, err := s.repo.Find(ctx, params)
	if err != nil {
		return nil, shared.StoreError("Gagal mencari jastiper", err)
	}
	return filterAndSort(list, params), nil
}

// Stats counts the directory by verification state.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	list, err := s.Search(ctx, SearchParams{})
	if err != nil {
		return Stats{}, err
	}
	stats := Stats{Total: len(list)}
	for _, j := range list {
		if j.IsVerified {
			stats.Verified++
		}
	}
	stats.Unverified = stats.Total - stats.Verified
	return stats, nil
}
