package service

import (
	"context"
	"sort"
	"time"

	"iqscalar-service/internal/models"
	"iqscalar-service/internal/repository"
)

type QuestionService struct {
	Repo QuestionStore
	now  func() time.Time
}

func NewQuestionService(repo QuestionStore) *QuestionService {
	return &QuestionService{Repo: repo, now: time.Now}
}

// QuestionQuery is a filtered listing; Random draws a sample instead of paging.
type QuestionQuery struct {
	Filter repository.QuestionFilter
	Page   models.Page
	Random bool
}

func (s *QuestionService) ListQuestions(ctx context.Context, q QuestionQuery) ([]models.Question, models.Pagination, error) {
	if q.Random {
		questions, err := s.Repo.Sample(ctx, q.Filter, q.Page.Limit)
		if err != nil {
			return nil, models.Pagination{}, err
		}
		return questions, models.NewPagination(models.Page{Number: 1, Limit: q.Page.Limit}, int64(len(questions))), nil
	}

	questions, total, err := s.Repo.List(ctx, q.Filter, q.Page)
	if err != nil {
		return nil, models.Pagination{}, err
	}
	return questions, models.NewPagination(q.Page, total), nil
}

func (s *QuestionService) Categories(ctx context.Context) ([]string, error) {
	categories, err := s.Repo.Categories(ctx)
	if err != nil {
		return nil, err
	}
	sort.Strings(categories)
	return categories, nil
}

func (s *QuestionService) Stats(ctx context.Context) (models.QuestionBankStats, error) {
	counts, err := s.Repo.CategoryCounts(ctx)
	if err != nil {
		return models.QuestionBankStats{}, err
	}
	total, err := s.Repo.Count(ctx)
	if err != nil {
		return models.QuestionBankStats{}, err
	}
	return models.QuestionBankStats{ByCategory: counts, Total: int(total)}, nil
}

func (s *QuestionService) GetQuestion(ctx context.Context, id string) (*models.Question, error) {
	return s.Repo.FindByID(ctx, id)
}

func (s *QuestionService) CreateQuestion(ctx context.Context, question *models.Question) error {
	question.ApplyDefaults(s.now())
	if err := question.Validate(); err != nil {
		return err
	}
	return s.Repo.Create(ctx, question)
}

// UpdateQuestion merges the patch into the stored question and revalidates it.
// The document id, questionId and creation time cannot be changed.
func (s *QuestionService) UpdateQuestion(ctx context.Context, id string, patch map[string]interface{}) (*models.Question, error) {
	question, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	oid, questionID, created := question.ID, question.QuestionID, question.CreatedAt

	if err := applyPatch(question, patch); err != nil {
		return nil, err
	}
	question.ID, question.QuestionID, question.CreatedAt = oid, questionID, created
	question.UpdatedAt = s.now()

	if err := question.Validate(); err != nil {
		return nil, err
	}
	if err := s.Repo.Save(ctx, question); err != nil {
		return nil, err
	}
	return question, nil
}

func (s *QuestionService) DeleteQuestion(ctx context.Context, id string) error {
	return s.Repo.Delete(ctx, id)
}
