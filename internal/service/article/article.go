package article

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"blog-console/internal/domain/models"
	req "blog-console/internal/lib/api/request"
	"blog-console/internal/lib/logger/sl"
	"blog-console/internal/lib/retry"
)

const (
	PageSize     = 10
	RelatedLimit = 3
)

var ErrArticleNotFound = errors.New("article not found")

type API interface {
	Articles(ctx context.Context, q models.ArticleQuery) (*models.ArticlePage, error)
	Article(ctx context.Context, id string) (*models.Article, error)
	CreateArticle(ctx context.Context, in models.ArticleInput) (*models.Article, error)
	UpdateArticle(ctx context.Context, id string, in models.ArticleInput) error
	DeleteArticle(ctx context.Context, id string) error
	Upload(ctx context.Context, filename string, r io.Reader) (string, error)
}

// Categories lists the categories an article can be filed under.
type Categories interface {
	Options(ctx context.Context) ([]models.Category, error)
}

type Validator interface {
	Struct(s any) error
}

// Image is a file picked in the article form.
type Image struct {
	Filename string
	Body     io.Reader
}

type Service struct {
	log        *slog.Logger
	api        API
	categories Categories
	validator  Validator
	policy     retry.Policy
}

func New(log *slog.Logger, api API, categories Categories, validator Validator, policy retry.Policy) *Service {
	return &Service{
		log:        log,
		api:        api,
		categories: categories,
		validator:  validator,
		policy:     policy,
	}
}

// List fetches one page of articles, retrying failures per the policy.
func (s *Service) List(ctx context.Context, q models.ArticleQuery) (*models.ArticlePage, error) {
	const op = "service.article.List"

	log := s.log.With(slog.String("op", op))

	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = PageSize
	}

	page, err := retry.Do(ctx, s.policy, func(ctx context.Context) (*models.ArticlePage, error) {
		return s.api.Articles(ctx, q)
	})
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			log.Error("failed to list articles", sl.Error(err))
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return page, nil
}

// Get fetches a single article.
func (s *Service) Get(ctx context.Context, id string) (*models.Article, error) {
	const op = "service.article.Get"

	log := s.log.With(slog.String("op", op))

	art, err := s.api.Article(ctx, id)
	if err != nil {
		log.Error("failed to get article", slog.String("id", id), sl.Error(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if art == nil || art.ID == "" && art.Title == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrArticleNotFound)
	}

	return art, nil
}

// Related returns up to RelatedLimit other articles of the same category.
// Failures are logged and yield no related articles.
func (s *Service) Related(ctx context.Context, art *models.Article) []models.Article {
	const op = "service.article.Related"

	log := s.log.With(slog.String("op", op))

	categoryID := art.CategoryID
	if art.Category != nil && art.Category.ID != "" {
		categoryID = art.Category.ID
	}
	if categoryID == "" {
		return nil
	}

	page, err := s.api.Articles(ctx, models.ArticleQuery{
		Category: categoryID,
		Limit:    RelatedLimit,
		Exclude:  art.ID,
	})
	if err != nil {
		log.Debug("failed to get related articles", slog.String("id", art.ID), sl.Error(err))
		return nil
	}

	related := make([]models.Article, 0, RelatedLimit)
	for _, a := range page.Data {
		if a.ID == art.ID {
			continue
		}
		related = append(related, a)
		if len(related) == RelatedLimit {
			break
		}
	}

	return related
}

// EditForm loads what the edit page needs: the article and the category
// options, fetched concurrently.
func (s *Service) EditForm(ctx context.Context, id string) (*models.Article, []models.Category, error) {
	const op = "service.article.EditForm"

	var (
		art  *models.Article
		cats []models.Category
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		art, err = s.Get(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		cats, err = s.categories.Options(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	return art, cats, nil
}

// Create validates the form, uploads the image if one was picked and
// creates the article.
func (s *Service) Create(ctx context.Context, form req.Article, img *Image) error {
	const op = "service.article.Create"

	log := s.log.With(slog.String("op", op))

	in, err := s.input(ctx, form, img)
	if err != nil {
		return err
	}

	if _, err := s.api.CreateArticle(ctx, in); err != nil {
		log.Error("failed to create article", sl.Error(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Update is Create for an existing article. Without a new image the
// current image URL from the form is kept.
func (s *Service) Update(ctx context.Context, id string, form req.Article, img *Image) error {
	const op = "service.article.Update"

	log := s.log.With(slog.String("op", op))

	in, err := s.input(ctx, form, img)
	if err != nil {
		return err
	}

	if err := s.api.UpdateArticle(ctx, id, in); err != nil {
		log.Error("failed to update article", slog.String("id", id), sl.Error(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Service) Remove(ctx context.Context, id string) error {
	const op = "service.article.Remove"

	log := s.log.With(slog.String("op", op))

	if err := s.api.DeleteArticle(ctx, id); err != nil {
		log.Error("failed to remove article", slog.String("id", id), sl.Error(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Service) input(ctx context.Context, form req.Article, img *Image) (models.ArticleInput, error) {
	const op = "service.article.input"

	if err := s.validator.Struct(form); err != nil {
		return models.ArticleInput{}, err
	}

	in := models.ArticleInput{
		Title:      form.Title,
		Content:    form.Content,
		CategoryID: form.CategoryID,
		ImageURL:   form.ImageURL,
	}

	if img != nil {
		url, err := s.api.Upload(ctx, img.Filename, img.Body)
		if err != nil {
			s.log.Error("failed to upload image", slog.String("op", op), sl.Error(err))
			return models.ArticleInput{}, fmt.Errorf("%s: upload image: %w", op, err)
		}
		in.ImageURL = url
	}

	return in, nil
}
