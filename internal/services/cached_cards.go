package services

import (
	"fmt"
	"time"

	"kanban-board/backend/internal/cache"
	"kanban-board/backend/internal/models"
	"kanban-board/backend/internal/repositories"
)

const (
	cardTTL = 30 * time.Minute
	listTTL = 5 * time.Minute
)

// CachedCardService decorates a CardService with a redis read-through cache.
// Single cards are cached per id; listings per query signature. Every
// mutation invalidates the touched card and all listing keys.
type CachedCardService struct {
	cards CardService
	cache *cache.RedisCache
}

func NewCachedCardService(cards CardService, cacheInstance *cache.RedisCache) *CachedCardService {
	return &CachedCardService{cards: cards, cache: cacheInstance}
}

func cardKey(id uint) string {
	return fmt.Sprintf("card:%d", id)
}

func listKey(q repositories.ListQuery) string {
	return fmt.Sprintf("cards:list:%s|%s|%s|%s|%s|%s|%s|%s|%s|%t",
		q.Status, q.Priority, q.Assignee, q.JobNumber, q.ServiceQuote,
		q.Company, q.Tags, q.Search, q.Ordering, q.IncludeInactive)
}

func (s *CachedCardService) invalidate(id uint) {
	s.cache.Delete(cardKey(id))
	s.cache.DeletePattern("cards:list:*")
}

func (s *CachedCardService) CreateCard(input models.CardInput) (models.Card, error) {
	card, err := s.cards.CreateCard(input)
	if err != nil {
		return card, err
	}

	s.cache.Set(cardKey(card.ID), card, cardTTL)
	s.cache.DeletePattern("cards:list:*")

	return card, nil
}

func (s *CachedCardService) GetCard(id uint) (models.Card, error) {
	var cached models.Card
	if err := s.cache.Get(cardKey(id), &cached); err == nil {
		return cached, nil
	}

	card, err := s.cards.GetCard(id)
	if err != nil {
		return card, err
	}

	s.cache.Set(cardKey(id), card, cardTTL)

	return card, nil
}

func (s *CachedCardService) UpdateCard(id uint, input models.CardInput) (models.Card, error) {
	card, err := s.cards.UpdateCard(id, input)
	if err != nil {
		return card, err
	}

	s.invalidate(id)
	s.cache.Set(cardKey(id), card, cardTTL)

	return card, nil
}

func (s *CachedCardService) DeleteCard(id uint) error {
	if err := s.cards.DeleteCard(id); err != nil {
		return err
	}

	s.invalidate(id)

	return nil
}

func (s *CachedCardService) RestoreCard(id uint) (models.Card, error) {
	card, err := s.cards.RestoreCard(id)
	if err != nil {
		return card, err
	}

	s.invalidate(id)
	s.cache.Set(cardKey(id), card, cardTTL)

	return card, nil
}

func (s *CachedCardService) ListCards(q repositories.ListQuery) ([]models.Card, error) {
	key := listKey(q)

	var cached []models.Card
	if err := s.cache.Get(key, &cached); err == nil {
		return cached, nil
	}

	cards, err := s.cards.ListCards(q)
	if err != nil {
		return cards, err
	}

	s.cache.Set(key, cards, listTTL)

	return cards, nil
}
