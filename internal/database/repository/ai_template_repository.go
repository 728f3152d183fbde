package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/avisgenius/backend-go/internal/database/models"
)

// AiTemplateRepository defines the interface for AI template data operations
type AiTemplateRepository interface {
	Create(tpl *models.AiTemplate) error
	FindByID(id string) (*models.AiTemplate, error)
	FindAll() ([]models.AiTemplate, error)
	Update(tpl *models.AiTemplate) error
	Delete(id string) error
}

type aiTemplateRepository struct {
	db *gorm.DB
}

// NewAiTemplateRepository creates a new AI template repository instance
func NewAiTemplateRepository(db *gorm.DB) AiTemplateRepository {
	return &aiTemplateRepository{db: db}
}

func (r *aiTemplateRepository) Create(tpl *models.AiTemplate) error {
	return r.db.Create(tpl).Error
}

func (r *aiTemplateRepository) FindByID(id string) (*models.AiTemplate, error) {
	var tpl models.AiTemplate
	err := r.db.First(&tpl, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	return &tpl, nil
}

func (r *aiTemplateRepository) FindAll() ([]models.AiTemplate, error) {
	var tpls []models.AiTemplate
	err := r.db.Order("name").Find(&tpls).Error
	return tpls, err
}

func (r *aiTemplateRepository) Update(tpl *models.AiTemplate) error {
	return r.db.Save(tpl).Error
}

func (r *aiTemplateRepository) Delete(id string) error {
	return r.db.Delete(&models.AiTemplate{}, "id = ?", id).Error
}

// Repository errors
var (
	ErrTemplateNotFound = errors.New("ai template not found")
)
