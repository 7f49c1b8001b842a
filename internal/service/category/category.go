package category

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"blog-console/internal/domain/models"
	req "blog-console/internal/lib/api/request"
	"blog-console/internal/lib/logger/sl"
	"blog-console/internal/lib/retry"
)

const (
	PageSize = 10
	// OptionsLimit is how many categories are offered in article forms and filters.
	OptionsLimit = 100
)

type API interface {
	Categories(ctx context.Context, q models.CategoryQuery) (*models.CategoryPage, error)
	CreateCategory(ctx context.Context, in models.CategoryInput) (*models.Category, error)
	UpdateCategory(ctx context.Context, id string, in models.CategoryInput) error
	DeleteCategory(ctx context.Context, id string) error
}

type Validator interface {
	Struct(s any) error
}

type Service struct {
	log       *slog.Logger
	api       API
	validator Validator
	policy    retry.Policy
}

func New(log *slog.Logger, api API, validator Validator, policy retry.Policy) *Service {
	return &Service{
		log:       log,
		api:       api,
		validator: validator,
		policy:    policy,
	}
}

// List fetches one page of categories, retrying failures per the policy.
func (s *Service) List(ctx context.Context, q models.CategoryQuery) (*models.CategoryPage, error) {
	const op = "service.category.List"

	log := s.log.With(slog.String("op", op))

	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = PageSize
	}

	page, err := retry.Do(ctx, s.policy, func(ctx context.Context) (*models.CategoryPage, error) {
		return s.api.Categories(ctx, q)
	})
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			log.Error("failed to list categories", sl.Error(err))
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return page, nil
}

// Options returns the categories to pick from in forms and filters.
func (s *Service) Options(ctx context.Context) ([]models.Category, error) {
	const op = "service.category.Options"

	page, err := s.api.Categories(ctx, models.CategoryQuery{Page: 1, Limit: OptionsLimit})
	if err != nil {
		s.log.Error("failed to get category options", slog.String("op", op), sl.Error(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return page.Data, nil
}

func (s *Service) Create(ctx context.Context, form req.Category) error {
	const op = "service.category.Create"

	log := s.log.With(slog.String("op", op))

	if err := s.validator.Struct(form); err != nil {
		return err
	}

	if _, err := s.api.CreateCategory(ctx, models.CategoryInput{Name: form.Name}); err != nil {
		log.Error("failed to create category", sl.Error(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Service) Update(ctx context.Context, id string, form req.Category) error {
	const op = "service.category.Update"

	log := s.log.With(slog.String("op", op))

	if err := s.validator.Struct(form); err != nil {
		return err
	}

	if err := s.api.UpdateCategory(ctx, id, models.CategoryInput{Name: form.Name}); err != nil {
		log.Error("failed to update category", slog.String("id", id), sl.Error(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Service) Remove(ctx context.Context, id string) error {
	const op = "service.category.Remove"

	log := s.log.With(slog.String("op", op))

	if err := s.api.DeleteCategory(ctx, id); err != nil {
		log.Error("failed to remove category", slog.String("id", id), sl.Error(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
