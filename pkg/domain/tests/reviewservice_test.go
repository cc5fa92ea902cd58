package tests

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akaBaytar/buyzio-ecommerce/pkg/domain/model"
	"github.com/akaBaytar/buyzio-ecommerce/pkg/domain/service"
)

func setupReview(t *testing.T) (service.ReviewService, *memoryStore, *mockEventDispatcher) {
	store := newMemoryStore()
	dispatcher := &mockEventDispatcher{}
	reviewService := service.NewReviewService(&mockUnitOfWork{store: store}, &mockProvider{store: store}, dispatcher)
	return reviewService, store, dispatcher
}

func TestSubmitReview(t *testing.T) {
	reviewService, store, dispatcher := setupReview(t)
	product := seedProduct(store, "30.00", 5)
	userID := uuid.New()

	t.Run("Creates the first review and the aggregate", func(t *testing.T) {
		review, err := reviewService.SubmitReview(userID, product.ID, "Great shirt", "Fits well.", 4)

		require.NoError(t, err)
		require.NotNil(t, review)
		assert.Equal(t, 4, review.Rating)

		updatedProduct := store.products[product.ID]
		assert.Equal(t, "4", updatedProduct.Rating.String())
		assert.Equal(t, 1, updatedProduct.NumReviews)
		assert.Equal(t, 2, updatedProduct.Version)

		require.Len(t, dispatcher.events, 1)
		_, ok := dispatcher.events[0].(model.ReviewSubmitted)
		assert.True(t, ok)
	})

	t.Run("Resubmission updates in place", func(t *testing.T) {
		review, err := reviewService.SubmitReview(userID, product.ID, "Changed my mind", "Shrank in the wash.", 2)

		require.NoError(t, err)
		assert.Equal(t, 2, review.Rating)

		assert.Len(t, store.reviews, 1)
		updatedProduct := store.products[product.ID]
		assert.Equal(t, "2", updatedProduct.Rating.String())
		assert.Equal(t, 1, updatedProduct.NumReviews)
	})

	t.Run("Second reviewer moves the mean", func(t *testing.T) {
		_, err := reviewService.SubmitReview(uuid.New(), product.ID, "Love it", "", 5)

		require.NoError(t, err)
		updatedProduct := store.products[product.ID]
		assert.Equal(t, "3.5", updatedProduct.Rating.String())
		assert.Equal(t, 2, updatedProduct.NumReviews)
	})

	t.Run("Fail on out-of-range rating", func(t *testing.T) {
		_, err := reviewService.SubmitReview(userID, product.ID, "", "", 0)
		assert.ErrorIs(t, err, service.ErrInvalidRating)

		_, err = reviewService.SubmitReview(userID, product.ID, "", "", 6)
		assert.ErrorIs(t, err, service.ErrInvalidRating)
	})

	t.Run("Fail on unknown product", func(t *testing.T) {
		_, err := reviewService.SubmitReview(userID, uuid.New(), "", "", 3)
		assert.ErrorIs(t, err, model.ErrProductNotFound)
	})
}

func TestRemoveReview(t *testing.T) {
	reviewService, store, _ := setupReview(t)
	product := seedProduct(store, "30.00", 5)
	author := uuid.New()

	review, err := reviewService.SubmitReview(author, product.ID, "Great shirt", "", 4)
	require.NoError(t, err)
	_, err = reviewService.SubmitReview(uuid.New(), product.ID, "Decent", "", 2)
	require.NoError(t, err)

	t.Run("Fail for a different user", func(t *testing.T) {
		err := reviewService.RemoveReview(uuid.New(), review.ID)
		assert.ErrorIs(t, err, service.ErrNotReviewAuthor)
	})

	t.Run("Removal recomputes the aggregate", func(t *testing.T) {
		require.NoError(t, reviewService.RemoveReview(author, review.ID))

		updatedProduct := store.products[product.ID]
		assert.Equal(t, "2", updatedProduct.Rating.String())
		assert.Equal(t, 1, updatedProduct.NumReviews)

		_, err := reviewService.GetUserReview(author, product.ID)
		assert.ErrorIs(t, err, model.ErrReviewNotFound)
	})
}

func TestListProductReviews(t *testing.T) {
	reviewService, store, _ := setupReview(t)
	product := seedProduct(store, "30.00", 5)
	other := seedProduct(store, "45.00", 5)

	_, err := reviewService.SubmitReview(uuid.New(), product.ID, "A", "", 5)
	require.NoError(t, err)
	_, err = reviewService.SubmitReview(uuid.New(), product.ID, "B", "", 3)
	require.NoError(t, err)
	_, err = reviewService.SubmitReview(uuid.New(), other.ID, "C", "", 1)
	require.NoError(t, err)

	reviews, err := reviewService.ListProductReviews(product.ID)
	require.NoError(t, err)
	assert.Len(t, reviews, 2)
}
