package services

import (
	"kanban-board/backend/internal/models"
	"kanban-board/backend/internal/repositories"
)

// CardService is the behavioral surface handlers talk to. Handler tests mock
// this interface.
type CardService interface {
	CreateCard(input models.CardInput) (models.Card, error)
	GetCard(id uint) (models.Card, error)
	UpdateCard(id uint, input models.CardInput) (models.Card, error)
	DeleteCard(id uint) error
	RestoreCard(id uint) (models.Card, error)
	ListCards(q repositories.ListQuery) ([]models.Card, error)
}

type cardService struct {
	repo repositories.CardRepository
}

func NewCardService(repo repositories.CardRepository) CardService {
	return &cardService{repo: repo}
}

func (s *cardService) CreateCard(input models.CardInput) (models.Card, error) {
	if errs := input.Validate(false); errs != nil {
		return models.Card{}, errs
	}
	return s.repo.Create(input)
}

func (s *cardService) GetCard(id uint) (models.Card, error) {
	return s.repo.Get(id)
}

func (s *cardService) UpdateCard(id uint, input models.CardInput) (models.Card, error) {
	if errs := input.Validate(true); errs != nil {
		return models.Card{}, errs
	}
	return s.repo.Update(id, input)
}

func (s *cardService) DeleteCard(id uint) error {
	return s.repo.SoftDelete(id)
}

func (s *cardService) RestoreCard(id uint) (models.Card, error) {
	return s.repo.Restore(id)
}

func (s *cardService) ListCards(q repositories.ListQuery) ([]models.Card, error) {
	return s.repo.List(q)
}
