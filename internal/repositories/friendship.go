package repositories

import (
	"errors"

	"github.com/JoaoZanelato/galeria-web/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FriendshipRepository defines the data-access methods for friendships.
type FriendshipRepository interface {
	FindByID(id uuid.UUID) (*models.Friendship, error)
	// FindByPair looks up the single row for the unordered (a, b) pair,
	// whichever direction it was created in. Returns nil when absent.
	FindByPair(a, b uuid.UUID) (*models.Friendship, error)
	Create(f *models.Friendship) error
	Update(f *models.Friendship) error
	PendingFor(userID uuid.UUID) ([]models.Friendship, error)
	AcceptedFor(userID uuid.UUID) ([]models.Friendship, error)
	// Transactional methods
	SharesBetweenInTx(tx *gorm.DB, a, b uuid.UUID) ([]models.Share, error)
	DeleteSharesBetweenInTx(tx *gorm.DB, a, b uuid.UUID) error
	DeleteInTx(tx *gorm.DB, f *models.Friendship) error
}

type friendshipRepository struct {
	db *gorm.DB
}

func NewFriendshipRepository(db *gorm.DB) FriendshipRepository {
	return &friendshipRepository{db: db}
}

func (r *friendshipRepository) FindByID(id uuid.UUID) (*models.Friendship, error) {
	var f models.Friendship
	if err := r.db.First(&f, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *friendshipRepository) FindByPair(a, b uuid.UUID) (*models.Friendship, error) {
	var f models.Friendship
	err := r.db.
		Where("(requester_id = ? AND accepter_id = ?) OR (requester_id = ? AND accepter_id = ?)", a, b, b, a).
		First(&f).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &f, nil
}

func (r *friendshipRepository) Create(f *models.Friendship) error {
	return r.db.Create(f).Error
}

func (r *friendshipRepository) Update(f *models.Friendship) error {
	return r.db.Save(f).Error
}

func (r *friendshipRepository) PendingFor(userID uuid.UUID) ([]models.Friendship, error) {
	var rows []models.Friendship
	err := r.db.
		Where("accepter_id = ? AND status = ?", userID, models.FriendshipPending).
		Find(&rows).Error
	return rows, err
}

func (r *friendshipRepository) AcceptedFor(userID uuid.UUID) ([]models.Friendship, error) {
	var rows []models.Friendship
	err := r.db.
		Where("(requester_id = ? OR accepter_id = ?) AND status = ?", userID, userID, models.FriendshipAccepted).
		Find(&rows).Error
	return rows, err
}

// --- Transaction-scoped methods ---

func (r *friendshipRepository) SharesBetweenInTx(tx *gorm.DB, a, b uuid.UUID) ([]models.Share, error) {
	var shares []models.Share
	err := tx.
		Where("(sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)", a, b, b, a).
		Find(&shares).Error
	return shares, err
}

func (r *friendshipRepository) DeleteSharesBetweenInTx(tx *gorm.DB, a, b uuid.UUID) error {
	return tx.
		Where("(sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)", a, b, b, a).
		Delete(&models.Share{}).Error
}

func (r *friendshipRepository) DeleteInTx(tx *gorm.DB, f *models.Friendship) error {
	return tx.Delete(f).Error
}
