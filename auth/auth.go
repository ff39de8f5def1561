package auth

import (
	"context"
	"crypto/rand"
	"encoding/base32"
	"errors"
	"fmt"
	"time"

	"github.com/form3tech-oss/jwt-go"
	"github.com/taskmanager-ai/backend/lib/utils"
	"github.com/taskmanager-ai/backend/models"
	"github.com/taskmanager-ai/backend/queue"
	storage "github.com/taskmanager-ai/backend/storage/persistent"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// Common errors surfaced to handlers. ErrInvalidInput maps to 400,
// ErrAuthentication to 401; anything else is an infrastructure failure.
var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrAuthentication = errors.New("authentication failed")
)

// store is a global variable that holds an interface to the storage system (database).
var store storage.StorageInterface

// jwtSigningKey is a global variable that holds the key used for signing and verifying JWT tokens.
var jwtSigningKey string

// emailQueue is a global variable that stores a reference to the messaging queue used to process and send emails.
// It may be nil, in which case flows that send email report the service as unavailable.
var emailQueue *queue.Queue

// Token lifetimes. The auth token is short-lived by design; clients hold a
// refresh token to mint new pairs.
const (
	authTokenTTL    = 15 * time.Minute
	refreshTokenTTL = 24 * time.Hour
	resetTokenTTL   = 30 * time.Minute
)

// InitAuth is a function for initializing the authentication system.
//
// It accepts three arguments:
// - s: The storage backend holding user documents.
// - signingKey: The key used to sign JWT tokens.
// - q: A queue system to process outbound emails; may be nil.
//
// The function sets up the storage system and JWT signing key.
func InitAuth(s storage.StorageInterface, signingKey string, q *queue.Queue) {
	store = s
	jwtSigningKey = signingKey
	emailQueue = q
}

// CreateAuthToken creates a signed JWT token carrying the user's id.
// It returns a signed JWT token or an error if there was a problem during the token creation.
func CreateAuthToken(userId string) (string, error) {
	claims := jwt.MapClaims{
		"id":  userId,
		"exp": time.Now().Add(authTokenTTL).Unix(),
	}

	newToken := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := newToken.SignedString([]byte(jwtSigningKey))

	if err != nil {
		return "", errors.New("failed to create auth token")
	}

	return signedToken, nil
}

// CreateRefreshToken creates a refresh JWT token for a user.
// It returns a signed JWT refresh token or an error if there was a problem during the token creation.
func CreateRefreshToken(userId string) (string, error) {
	claims := jwt.MapClaims{
		"id":  userId,
		"exp": time.Now().Add(refreshTokenTTL).Unix(),
	}

	newToken := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := newToken.SignedString([]byte(jwtSigningKey))

	if err != nil {
		return "", errors.New("failed to create refresh token")
	}

	return signedToken, nil
}

// CreateTokens creates both an auth token and a refresh token for a user.
// It returns the pair of tokens or an error if there was a problem during the token creation.
func CreateTokens(userId string) (string, string, error) {
	authToken, authErr := CreateAuthToken(userId)
	if authErr != nil {
		return "", "", authErr
	}

	refreshToken, refreshErr := CreateRefreshToken(userId)
	if refreshErr != nil {
		return "", "", refreshErr
	}

	return authToken, refreshToken, nil
}

// ParseToken validates a signed JWT token and extracts the user id claim.
// This is the single verification path used by the HTTP guard middleware.
func ParseToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(jwtSigningKey), nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", errors.New("invalid token claims")
	}

	userId, ok := claims["id"].(string)
	if !ok || userId == "" {
		return "", errors.New("invalid token claims")
	}

	return userId, nil
}

// SignUp registers a new user.
//
// It validates the name, email format and password complexity, checks that
// no account already exists for the email, hashes the password, and stores
// the user with the default settings every new account starts with.
//
// The function returns an authentication token, a refresh token, and an error if there was a problem with any step of the process.
func SignUp(ctx context.Context, name, email, password string) (string, string, error) {

	if len(name) < 2 {
		return "", "", fmt.Errorf("%w: name must be at least 2 characters", ErrInvalidInput)
	}

	email = utils.NormalizeEmail(email)
	if !utils.ValidateEmail(email) {
		return "", "", fmt.Errorf("%w: invalid email format", ErrInvalidInput)
	}

	if !utils.ValidatePassword(password) {
		return "", "", fmt.Errorf("%w: password must be at least 8 characters and contain both letters and numbers", ErrInvalidInput)
	}

	foundUser, err := store.FindUser(ctx, bson.M{"email": email})
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return "", "", err
	}
	if foundUser != nil {
		return "", "", fmt.Errorf("%w: an account with this email already exists", ErrInvalidInput)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", "", err
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashedPassword),
		Settings: models.Settings{
			Language:      "english",
			Theme:         "light",
			Notifications: true,
		},
		CreatedAt: time.Now(),
	}

	user, err = store.AddUser(ctx, user)
	if err != nil {
		return "", "", err
	}

	return CreateTokens(user.ID.Hex())
}

// SignIn authenticates a user by email and password.
//
// It finds the user by their normalized email and compares the stored
// bcrypt hash against the provided password. Lookup misses and password
// mismatches are indistinguishable to the caller.
//
// The function returns an authentication token, a refresh token, and an error if there was a problem with any step of the process.
func SignIn(ctx context.Context, email, password string) (string, string, error) {

	email = utils.NormalizeEmail(email)

	foundUser, err := store.FindUser(ctx, bson.M{"email": email})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", "", ErrAuthentication
		}
		return "", "", err
	}

	err = bcrypt.CompareHashAndPassword([]byte(foundUser.PasswordHash), []byte(password))
	if err != nil {
		return "", "", ErrAuthentication
	}

	return CreateTokens(foundUser.ID.Hex())
}

// RefreshToken validates a refresh token and generates a new pair of tokens if the token is valid.
//
// If the refresh token is expired, invalid, or does not carry a user id,
// an error is returned and no tokens are minted.
func RefreshToken(refreshToken string) (string, string, error) {
	userId, err := ParseToken(refreshToken)
	if err != nil {
		if ve, ok := err.(*jwt.ValidationError); ok && ve.Errors == jwt.ValidationErrorExpired {
			return "", "", errors.New("expired refresh token")
		}
		return "", "", errors.New("invalid refresh token")
	}

	return CreateTokens(userId)
}

// ChangePassword updates a user's password after verifying the current one.
func ChangePassword(ctx context.Context, userId, currentPassword, newPassword string) error {
	objectID, err := primitive.ObjectIDFromHex(userId)
	if err != nil {
		return fmt.Errorf("%w: malformed user id", ErrInvalidInput)
	}

	foundUser, err := store.FindUser(ctx, bson.M{"_id": objectID})
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(foundUser.PasswordHash), []byte(currentPassword)); err != nil {
		return ErrAuthentication
	}

	if !utils.ValidatePassword(newPassword) {
		return fmt.Errorf("%w: password must be at least 8 characters and contain both letters and numbers", ErrInvalidInput)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	_, err = store.UpdateUser(ctx, bson.M{"_id": objectID}, bson.M{
		"$set": bson.M{"password_hash": string(hashedPassword)},
	})
	return err
}

// DeleteAccount removes a user after verifying their password. Ownership
// cascade is handled by the storage layer's DeleteUser.
func DeleteAccount(ctx context.Context, userId, password string) error {
	objectID, err := primitive.ObjectIDFromHex(userId)
	if err != nil {
		return fmt.Errorf("%w: malformed user id", ErrInvalidInput)
	}

	foundUser, err := store.FindUser(ctx, bson.M{"_id": objectID})
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(foundUser.PasswordHash), []byte(password)); err != nil {
		return ErrAuthentication
	}

	_, err = store.DeleteUser(ctx, bson.M{"_id": objectID})
	return err
}

// ForgotPassword starts a password reset flow for the given email.
//
// It generates a short random token, stores a bcrypt hash of it with a
// 30 minute expiry, and publishes a reset email onto the queue. For an
// unknown email the function still succeeds, so the endpoint cannot be
// used to probe which addresses have accounts.
func ForgotPassword(ctx context.Context, email string) error {
	email = utils.NormalizeEmail(email)

	foundUser, err := store.FindUser(ctx, bson.M{"email": email})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		return err
	}

	if emailQueue == nil {
		return errors.New("email service unavailable")
	}

	resetToken, err := generateToken()
	if err != nil {
		return err
	}

	hashedToken, err := bcrypt.GenerateFromPassword([]byte(resetToken), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	// Any older pending resets for the user are superseded.
	if _, err := store.DeletePasswordReset(ctx, bson.M{"user_id": foundUser.ID}); err != nil {
		return err
	}

	reset := &models.PasswordReset{
		UserID:    foundUser.ID,
		TokenHash: string(hashedToken),
		ExpiresAt: time.Now().Add(resetTokenTTL),
	}
	if _, err := store.AddPasswordReset(ctx, reset); err != nil {
		return err
	}

	msg := &queue.EmailMessage{
		Id:      reset.ID.Hex(),
		To:      email,
		Subject: "Password Reset Request",
		Body: "Here is your password reset code: <strong>" + resetToken + "</strong>." +
			" It expires in 30 minutes.",
	}
	return queue.ProcessEmail(msg, emailQueue)
}

// ResetPassword completes a password reset flow.
//
// It fetches the pending reset record for the email, checks expiry and the
// token hash, and updates the stored password hash. The reset record is
// removed regardless of whether the token matched.
func ResetPassword(ctx context.Context, email, token, newPassword string) error {
	email = utils.NormalizeEmail(email)

	foundUser, err := store.FindUser(ctx, bson.M{"email": email})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrAuthentication
		}
		return err
	}

	reset, err := store.FindPasswordReset(ctx, bson.M{"user_id": foundUser.ID})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrAuthentication
		}
		return err
	}

	var resetErr error
	if reset.ExpiresAt.Before(time.Now()) {
		resetErr = fmt.Errorf("%w: reset token has expired", ErrAuthentication)
	} else if err := bcrypt.CompareHashAndPassword([]byte(reset.TokenHash), []byte(token)); err != nil {
		resetErr = fmt.Errorf("%w: invalid reset token", ErrAuthentication)
	} else if !utils.ValidatePassword(newPassword) {
		resetErr = fmt.Errorf("%w: password must be at least 8 characters and contain both letters and numbers", ErrInvalidInput)
	} else {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		_, err = store.UpdateUser(ctx, bson.M{"_id": foundUser.ID}, bson.M{
			"$set": bson.M{"password_hash": string(hashedPassword)},
		})
		if err != nil {
			return err
		}
	}

	if _, err := store.DeletePasswordReset(ctx, bson.M{"_id": reset.ID}); err != nil {
		return errors.New("error removing reset record")
	}

	return resetErr
}

// generateToken produces a short random base32 code, the same shape the
// reset email carries.
func generateToken() (string, error) {
	tokenBytes := make([]byte, 5)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	token := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(tokenBytes)
	if len(token) > 8 {
		token = token[:8]
	}
	return token, nil
}
