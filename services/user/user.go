package user

import (
	"fmt"
	"time"

	userRepo "hive/database/repository/user"
	"hive/models"
	"hive/services/timebank"
	"hive/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// tokenTTL bounds both the JWT expiry and the Redis session record.
const tokenTTL = 72 * time.Hour

// UserService manages accounts, authentication and profiles.
type UserService interface {
	// Register creates the account, grants the starting balance through the
	// ledger, and opens a session.
	Register(payload models.UserCreate) (*models.User, string, error)
	// Login verifies credentials and opens a session.
	Login(email, password string) (*models.User, string, error)
	// Logout revokes the user's active session.
	Logout(userID string) error
	// GetByID returns the user. Without includePrivate the view is filtered
	// by the user's privacy settings.
	GetByID(id string, includePrivate bool) (*models.User, error)
	GetByUsername(username string) (*models.User, error)
	ListAll() ([]models.User, error)
	UpdateProfile(userID string, payload models.UserUpdate) (*models.User, error)
	UpdateSettings(userID string, payload models.UserSettingsUpdate) (*models.User, error)
	ChangePassword(userID, currentPassword, newPassword string) error
	// Deactivate soft-deletes the account and revokes the session.
	Deactivate(userID string) error
	// UpdateRole changes a user's role. Admin surface only.
	UpdateRole(targetID string, role models.UserRole) (*models.User, error)
}

// DefaultUserService is the production implementation.
type DefaultUserService struct {
	Repo   userRepo.UserRepository
	Engine timebank.TimeBankService
}

// NewUserService constructs the user manager.
func NewUserService(repo userRepo.UserRepository, engine timebank.TimeBankService) *DefaultUserService {
	return &DefaultUserService{Repo: repo, Engine: engine}
}

// Register creates a new account. The starting balance arrives as a regular
// ledger grant, so the history explains where the hours came from.
func (s *DefaultUserService) Register(payload models.UserCreate) (*models.User, string, error) {
	if payload.Password != payload.ConfirmPassword {
		return nil, "", ErrPasswordMismatch
	}

	existing, err := s.Repo.GetByEmail(payload.Email)
	if err != nil {
		return nil, "", err
	}
	if existing != nil {
		return nil, "", ErrEmailTaken
	}
	existing, err = s.Repo.GetByUsername(payload.Username)
	if err != nil {
		return nil, "", err
	}
	if existing != nil {
		return nil, "", ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Username:     payload.Username,
		Email:        payload.Email,
		PasswordHash: string(hash),
		FullName:     payload.FullName,
		Bio:          payload.Bio,
		Location:     payload.Location,
		SocialLinks:  payload.SocialLinks,
		Interests:    payload.Interests,
		Role:         models.RoleUser,
		IsActive:     true,

		ProfileVisible: true,
		ShowEmail:      false,
		ShowLocation:   true,

		EmailNotifications:          true,
		ServiceMatchesNotifications: true,
		MessagesNotifications:       true,
	}
	if err := s.Repo.Create(user); err != nil {
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	if _, err := s.Engine.Apply(user.ID, timebank.StartingBalance, "Starting balance", ""); err != nil {
		// The account exists; the grant can be retried by support. Loud log.
		utils.GetLogger().Error("failed to grant starting balance",
			zap.String("userID", user.ID), zap.Error(err))
	} else {
		user.TimeBankBalance = timebank.StartingBalance
	}

	token, err := s.openSession(user)
	if err != nil {
		return nil, "", err
	}

	utils.GetLogger().Info("user registered", zap.String("userID", user.ID), zap.String("username", user.Username))
	return user, token, nil
}

// Login verifies the credentials and issues a fresh session token.
func (s *DefaultUserService) Login(email, password string) (*models.User, string, error) {
	user, err := s.Repo.GetByEmail(email)
	if err != nil {
		return nil, "", err
	}
	if user == nil {
		return nil, "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, "", ErrAccountDisabled
	}

	token, err := s.openSession(user)
	if err != nil {
		return nil, "", err
	}

	utils.GetLogger().Info("user logged in", zap.String("userID", user.ID))
	return user, token, nil
}

func (s *DefaultUserService) openSession(user *models.User) (string, error) {
	token, err := utils.GenerateToken(user.ID, user.Email, tokenTTL)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	if err := utils.SaveAuthToken(utils.GetAuthCacheClient(), user.ID, token, tokenTTL); err != nil {
		return "", err
	}
	return token, nil
}

func (s *DefaultUserService) Logout(userID string) error {
	return utils.RevokeAuthToken(utils.GetAuthCacheClient(), userID)
}

func (s *DefaultUserService) GetByID(id string, includePrivate bool) (*models.User, error) {
	user, err := s.Repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	if includePrivate {
		return user, nil
	}
	public := user.PublicView()
	return &public, nil
}

func (s *DefaultUserService) GetByUsername(username string) (*models.User, error) {
	user, err := s.Repo.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	public := user.PublicView()
	return &public, nil
}

func (s *DefaultUserService) ListAll() ([]models.User, error) {
	return s.Repo.GetAll()
}

// UpdateProfile applies partial profile edits. A username change re-checks
// uniqueness.
func (s *DefaultUserService) UpdateProfile(userID string, payload models.UserUpdate) (*models.User, error) {
	setDoc := bson.M{}
	if payload.Username != nil {
		existing, err := s.Repo.GetByUsername(*payload.Username)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != userID {
			return nil, ErrUsernameTaken
		}
		setDoc["username"] = *payload.Username
	}
	if payload.FullName != nil {
		setDoc["full_name"] = *payload.FullName
	}
	if payload.Bio != nil {
		setDoc["bio"] = *payload.Bio
	}
	if payload.Location != nil {
		setDoc["location"] = *payload.Location
	}
	if payload.ProfilePicture != nil {
		setDoc["profile_picture"] = *payload.ProfilePicture
	}
	if payload.SocialLinks != nil {
		setDoc["social_links"] = payload.SocialLinks
	}
	if payload.Interests != nil {
		setDoc["interests"] = payload.Interests
	}

	if len(setDoc) > 0 {
		if err := s.Repo.UpdateSetDocument(userID, setDoc); err != nil {
			return nil, fmt.Errorf("failed to update profile: %w", err)
		}
	}
	return s.GetByID(userID, true)
}

// UpdateSettings applies partial privacy/notification edits.
func (s *DefaultUserService) UpdateSettings(userID string, payload models.UserSettingsUpdate) (*models.User, error) {
	setDoc := bson.M{}
	if payload.ProfileVisible != nil {
		setDoc["profile_visible"] = *payload.ProfileVisible
	}
	if payload.ShowEmail != nil {
		setDoc["show_email"] = *payload.ShowEmail
	}
	if payload.ShowLocation != nil {
		setDoc["show_location"] = *payload.ShowLocation
	}
	if payload.EmailNotifications != nil {
		setDoc["email_notifications"] = *payload.EmailNotifications
	}
	if payload.ServiceMatchesNotifications != nil {
		setDoc["service_matches_notifications"] = *payload.ServiceMatchesNotifications
	}
	if payload.MessagesNotifications != nil {
		setDoc["messages_notifications"] = *payload.MessagesNotifications
	}

	if len(setDoc) > 0 {
		if err := s.Repo.UpdateSetDocument(userID, setDoc); err != nil {
			return nil, fmt.Errorf("failed to update settings: %w", err)
		}
	}
	return s.GetByID(userID, true)
}

func (s *DefaultUserService) ChangePassword(userID, currentPassword, newPassword string) error {
	user, err := s.GetByID(userID, true)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return ErrWrongPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.Repo.UpdateSetDocument(userID, bson.M{"password_hash": string(hash)}); err != nil {
		return fmt.Errorf("failed to change password: %w", err)
	}

	// Force a fresh login with the new password.
	return s.Logout(userID)
}

// Deactivate soft-deletes the account. The user record and its ledger
// history are kept; the session is revoked.
func (s *DefaultUserService) Deactivate(userID string) error {
	if _, err := s.GetByID(userID, true); err != nil {
		return err
	}
	if err := s.Repo.UpdateSetDocument(userID, bson.M{"is_active": false}); err != nil {
		return fmt.Errorf("failed to deactivate user: %w", err)
	}
	utils.GetLogger().Info("user deactivated", zap.String("userID", userID))
	return s.Logout(userID)
}

func (s *DefaultUserService) UpdateRole(targetID string, role models.UserRole) (*models.User, error) {
	if _, err := s.GetByID(targetID, true); err != nil {
		return nil, err
	}
	if err := s.Repo.UpdateSetDocument(targetID, bson.M{"role": role}); err != nil {
		return nil, fmt.Errorf("failed to update role: %w", err)
	}
	return s.GetByID(targetID, true)
}
