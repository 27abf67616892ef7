package service

import (
	"context"

	"shop-service/internal/models"
	"shop-service/internal/repository"
)

type ProductInput struct {
	Title         string
	PriceCents    int64
	QuantityTovar int64
}

type ProductService interface {
	GetByID(ctx context.Context, id int64) (*models.Product, error)
	GetAll(ctx context.Context) ([]models.Product, error)
	Create(ctx context.Context, in ProductInput) (*models.Product, error)
	UpdateStock(ctx context.Context, id int64, newQuantity int64) (*models.Product, error)
	Delete(ctx context.Context, id int64) error
}

var _ ProductService = (*productService)(nil)

type productService struct {
	repo *repository.Repository
}

func NewProductService(repo *repository.Repository) *productService {
	return &productService{repo: repo}
}

func (s *productService) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	p, err := s.repo.Products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProductNotFound
	}
	return p, nil
}

func (s *productService) GetAll(ctx context.Context) ([]models.Product, error) {
	return s.repo.Products.GetAll(ctx)
}

func (s *productService) Create(ctx context.Context, in ProductInput) (*models.Product, error) {
	if in.QuantityTovar < 0 || in.PriceCents < 0 {
		return nil, ErrInvalidQuantity
	}
	p := &models.Product{
		Title:         in.Title,
		PriceCents:    in.PriceCents,
		QuantityTovar: in.QuantityTovar,
	}
	if err := s.repo.Products.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *productService) UpdateStock(ctx context.Context, id int64, newQuantity int64) (*models.Product, error) {
	if newQuantity < 0 {
		return nil, ErrInvalidQuantity
	}
	p, err := s.repo.Products.UpdateStock(ctx, id, newQuantity)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProductNotFound
	}
	return p, nil
}

func (s *productService) Delete(ctx context.Context, id int64) error {
	_, err := s.repo.Products.Delete(ctx, id)
	return err
}
