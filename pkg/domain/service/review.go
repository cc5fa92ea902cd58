package service

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/akaBaytar/buyzio-ecommerce/pkg/domain/model"
)

var (
	ErrInvalidRating   = errors.New("rating must be between 1 and 5")
	ErrNotReviewAuthor = errors.New("review belongs to another user")
)

type ReviewService interface {
	SubmitReview(userID, productID uuid.UUID, title, description string, rating int) (*model.Review, error)
	ListProductReviews(productID uuid.UUID) ([]*model.Review, error)
	GetUserReview(userID, productID uuid.UUID) (*model.Review, error)
	RemoveReview(userID, reviewID uuid.UUID) error
}

func NewReviewService(uow model.UnitOfWork, repos model.RepositoryProvider, dispatcher EventDispatcher) ReviewService {
	return &reviewService{uow: uow, repos: repos, dispatcher: dispatcher}
}

type reviewService struct {
	uow        model.UnitOfWork
	repos      model.RepositoryProvider
	dispatcher EventDispatcher
}

// SubmitReview upserts the user's review of a product and recomputes the
// product's rating aggregate inside the same transaction, so the aggregate
// is never stale relative to the write that triggered it.
func (s *reviewService) SubmitReview(userID, productID uuid.UUID, title, description string, rating int) (*model.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}

	if _, err := s.repos.Products().Find(productID); err != nil {
		return nil, err
	}

	var review *model.Review
	err := s.uow.Execute(func(r model.RepositoryProvider) error {
		now := time.Now().UTC()

		existing, err := r.Reviews().FindByProductAndUser(productID, userID)
		switch {
		case err == nil:
			existing.Title = title
			existing.Description = description
			existing.Rating = rating
			existing.UpdatedAt = now
			if err := r.Reviews().Update(existing); err != nil {
				return err
			}
			review = existing
		case errors.Is(err, model.ErrReviewNotFound):
			reviewID, err := r.Reviews().NextID()
			if err != nil {
				return err
			}
			review = &model.Review{
				ID:          reviewID,
				ProductID:   productID,
				UserID:      userID,
				Title:       title,
				Description: description,
				Rating:      rating,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if err := r.Reviews().Create(review); err != nil {
				return err
			}
		default:
			return err
		}

		return s.refreshProductRating(r, productID)
	})
	if err != nil {
		return nil, err
	}

	_ = s.dispatcher.Dispatch(model.ReviewSubmitted{ReviewID: review.ID, ProductID: productID, UserID: userID, Rating: rating})
	return review, nil
}

func (s *reviewService) ListProductReviews(productID uuid.UUID) ([]*model.Review, error) {
	return s.repos.Reviews().ListByProduct(productID)
}

func (s *reviewService) GetUserReview(userID, productID uuid.UUID) (*model.Review, error) {
	return s.repos.Reviews().FindByProductAndUser(productID, userID)
}

func (s *reviewService) RemoveReview(userID, reviewID uuid.UUID) error {
	review, err := s.repos.Reviews().Find(reviewID)
	if err != nil {
		return err
	}
	if review.UserID != userID {
		return ErrNotReviewAuthor
	}

	return s.uow.Execute(func(r model.RepositoryProvider) error {
		if err := r.Reviews().Delete(reviewID); err != nil {
			return err
		}
		return s.refreshProductRating(r, review.ProductID)
	})
}

func (s *reviewService) refreshProductRating(r model.RepositoryProvider, productID uuid.UUID) error {
	avg, count, err := r.Reviews().AggregateByProduct(productID)
	if err != nil {
		return err
	}

	product, err := r.Products().Find(productID)
	if err != nil {
		return err
	}

	product.Rating = avg
	product.NumReviews = count
	product.Version++
	product.UpdatedAt = time.Now().UTC()
	return r.Products().Update(product)
}
