package profiles

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pkg/errors"
)

type Service struct {
	store    Store
	moderate func(text string) error
	now      func() time.Time
}

func NewService(store Store) *Service {
	return &Service{
		store:    store,
		moderate: func(string) error { return nil },
		now:      time.Now,
	}
}

func (s *Service) SetModerator(fn func(text string) error) {
	s.moderate = fn
}

func (s *Service) Get(ctx context.Context, viewerId string) (Profile, error) {
	return s.store.Get(ctx, viewerId)
}

func (s *Service) GetByPseudonym(ctx context.Context, pseudonym string) (Profile, error) {
	normalized, err := NormalizePseudonym(pseudonym)
	if err != nil {
		return Profile{}, ErrProfileNotFound
	}
	return s.store.GetByNormalized(ctx, normalized)
}

// Author returns the author stub for a viewer, falling back to an anonymous
// one when the viewer has no profile yet.
func (s *Service) Author(ctx context.Context, viewerId string) (Profile, error) {
	p, err := s.store.Get(ctx, viewerId)
	if errors.Is(err, ErrProfileNotFound) {
		a := AnonymousAuthor(viewerId)
		return Profile{Id: viewerId, Pseudonym: a.Username}, nil
	}
	return p, err
}

// Onboard claims a pseudonym for the viewer and marks the profile onboarded.
func (s *Service) Onboard(ctx context.Context, viewerId string, pseudonym string, avatar string, bio string) (Profile, error) {
	p, err := s.store.Get(ctx, viewerId)
	if err != nil && !errors.Is(err, ErrProfileNotFound) {
		return p, err
	}
	if err == nil && p.Onboarded {
		return p, ErrAlreadyOnboarded
	}

	p = Profile{Id: viewerId, CreatedAt: s.now().UnixMilli()}
	if err := s.apply(ctx, &p, Patch{Pseudonym: &pseudonym, Avatar: &avatar, Bio: &bio}); err != nil {
		return p, err
	}
	p.Onboarded = true

	return p, s.store.Upsert(ctx, &p)
}

// Update merges only the fields present in patch.
func (s *Service) Update(ctx context.Context, viewerId string, patch Patch) (Profile, error) {
	p, err := s.store.Get(ctx, viewerId)
	if err != nil {
		return p, err
	}
	if err := s.apply(ctx, &p, patch); err != nil {
		return p, err
	}
	return p, s.store.Upsert(ctx, &p)
}

func (s *Service) apply(ctx context.Context, p *Profile, patch Patch) error {
	if patch.Pseudonym != nil {
		normalized, err := NormalizePseudonym(*patch.Pseudonym)
		if err != nil {
			return err
		}
		if err := s.moderate(normalized); err != nil {
			return err
		}
		if other, err := s.store.GetByNormalized(ctx, normalized); err == nil && other.Id != p.Id {
			return ErrPseudonymTaken
		} else if err != nil && !errors.Is(err, ErrProfileNotFound) {
			return err
		}
		p.Pseudonym = normalized
		p.Normalized = normalized
	}
	if patch.Avatar != nil {
		p.Avatar = strings.TrimSpace(*patch.Avatar)
	}
	if patch.Bio != nil {
		bio := strings.TrimSpace(*patch.Bio)
		if utf8.RuneCountInString(bio) > MaxBioLength {
			return ErrInvalidProfile
		}
		if bio != "" {
			if err := s.moderate(bio); err != nil {
				return err
			}
		}
		p.Bio = bio
	}
	return nil
}
