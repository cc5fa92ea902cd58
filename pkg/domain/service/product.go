package service

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/akaBaytar/buyzio-ecommerce/pkg/domain/model"
)

var (
	ErrNegativePrice        = errors.New("product price cannot be negative")
	ErrInvalidStockQuantity = errors.New("stock quantity must be a positive number")
)

type NewProductInput struct {
	Name        string
	Slug        string
	Category    string
	Brand       string
	Description string
	Images      []string
	Price       decimal.Decimal
	Stock       int
	IsFeatured  bool
	Banner      string
}

type ProductService interface {
	CreateProduct(input NewProductInput) (*model.Product, error)
	ChangeProductPrice(productID uuid.UUID, newPrice decimal.Decimal) error
	ReceiveStock(productID uuid.UUID, qty int) error
	ListLatest(limit int) ([]*model.Product, error)
	FindBySlug(slug string) (*model.Product, error)
}

func NewProductService(repo model.ProductRepository, dispatcher EventDispatcher) ProductService {
	return &productService{repo: repo, dispatcher: dispatcher}
}

type productService struct {
	repo       model.ProductRepository
	dispatcher EventDispatcher
}

func (s *productService) CreateProduct(input NewProductInput) (*model.Product, error) {
	if input.Price.IsNegative() {
		return nil, ErrNegativePrice
	}
	if input.Stock < 0 {
		return nil, ErrInvalidStockQuantity
	}
	if _, err := s.repo.FindBySlug(input.Slug); err == nil {
		return nil, model.ErrProductSlugTaken
	}

	productID, err := s.repo.NextID()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	product := &model.Product{
		ID:          productID,
		Name:        input.Name,
		Slug:        input.Slug,
		Category:    input.Category,
		Brand:       input.Brand,
		Description: input.Description,
		Images:      input.Images,
		Price:       input.Price,
		Stock:       input.Stock,
		Rating:      decimal.Zero,
		IsFeatured:  input.IsFeatured,
		Banner:      input.Banner,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(product); err != nil {
		return nil, err
	}

	_ = s.dispatcher.Dispatch(model.ProductCreated{ProductID: productID, Name: product.Name})
	return product, nil
}

func (s *productService) ChangeProductPrice(productID uuid.UUID, newPrice decimal.Decimal) error {
	if newPrice.IsNegative() {
		return ErrNegativePrice
	}

	product, err := s.repo.Find(productID)
	if err != nil {
		return err
	}

	oldPrice := product.Price
	product.Price = newPrice
	if err := s.updateProduct(product); err != nil {
		return err
	}

	_ = s.dispatcher.Dispatch(model.ProductPriceChanged{ProductID: productID, OldPrice: oldPrice, NewPrice: newPrice})
	return nil
}

func (s *productService) ReceiveStock(productID uuid.UUID, qty int) error {
	if qty <= 0 {
		return ErrInvalidStockQuantity
	}

	product, err := s.repo.Find(productID)
	if err != nil {
		return err
	}

	product.Stock += qty
	if err := s.updateProduct(product); err != nil {
		return err
	}

	_ = s.dispatcher.Dispatch(model.ProductStockReceived{ProductID: productID, Qty: qty, NewStock: product.Stock})
	return nil
}

func (s *productService) ListLatest(limit int) ([]*model.Product, error) {
	return s.repo.ListLatest(limit)
}

func (s *productService) FindBySlug(slug string) (*model.Product, error) {
	return s.repo.FindBySlug(slug)
}

func (s *productService) updateProduct(product *model.Product) error {
	product.Version++
	product.UpdatedAt = time.Now().UTC()
	return s.repo.Update(product)
}
