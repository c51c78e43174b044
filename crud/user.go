package crud

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"twtr/auth"
	"twtr/domain"
	"twtr/errs"
)

// credentialsMessage is returned on any failed login attempt. It is the same
// for an unknown username and for a wrong password, so that the login
// endpoint cannot be used to enumerate usernames.
const credentialsMessage = "Invalid username or password."

// UserService manages Users. It also contains the part of the authentication
// system that handles database interactions and token hashing, with
// http/auth.go dealing with requests, middleware and cookies.
// It implements the domain.UserService interface.
type UserService struct {
	userValidator
}

// userValidator runs validations on incoming User data.
// On success, it passes the data on to userGorm.
// Otherwise, it returns the error of the validation that has failed.
type userValidator struct {
	hmac       auth.HMAC
	pepper     string
	emailRegex *regexp.Regexp
	userGorm
}

// userGorm runs CRUD operations on the database using incoming User data.
// It assumes that data has been validated. On success, it returns nil.
// Otherwise, it returns the error of the operation that has failed.
type userGorm struct {
	db *gorm.DB
}

// NewUserService returns an instance of UserService.
func NewUserService(db *gorm.DB, pepper, hmacKey string) *UserService {
	return &UserService{
		userValidator{
			hmac:       auth.NewHMAC(hmacKey),
			pepper:     pepper,
			emailRegex: regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,16}$`),
			userGorm: userGorm{
				db: db,
			},
		},
	}
}

// Ensure the UserService struct properly implements the domain.UserService
// interface. If it does not, then this expression becomes invalid and won't compile.
var _ domain.UserService = &UserService{}

// Authenticate checks a submitted username and password for existence and
// correctness. Both failure modes produce the same error.
func (uv *userValidator) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	found, err := uv.userGorm.ByUsername(ctx, username)
	if err != nil {
		if errs.ErrorCode(err) == errs.ENOTFOUND {
			return nil, errs.Errorf(errs.EINVALID, credentialsMessage)
		}
		return nil, err
	}

	// Append the predefined pepper to the submitted password, hash it, and
	// compare the result to the hash stored in the user's database record.
	err = bcrypt.CompareHashAndPassword([]byte(found.PasswordHash), []byte(password+uv.pepper))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, errs.Errorf(errs.EINVALID, credentialsMessage)
		}
		return nil, err
	}
	return found, nil
}

// ByRemember hashes a session cookie's remember token and looks it up.
func (uv *userValidator) ByRemember(ctx context.Context, token string) (*domain.User, error) {
	return uv.userGorm.ByRemember(ctx, uv.hmac.Hash(token))
}

// Create runs validations needed for creating new User database records.
// Field validations all run and their errors are reported together; only a
// fully valid user gets hashed and stored. A remember token is generated
// if none is provided.
func (uv *userValidator) Create(ctx context.Context, user *domain.User) error {
	err := runUserValFns(ctx, user,
		uv.usernameRequired,
		uv.usernameIsAvail,
		uv.emailNormalize,
		uv.emailRequired,
		uv.emailFormat,
		uv.passwordRequired,
		uv.passwordMinLength,
		uv.passwordNotNumeric,
		uv.passwordNotSimilar,
		uv.passwordConfirmMatch)
	if err != nil {
		return err
	}
	err = runUserValFns(ctx, user,
		uv.passwordBcrypt,
		uv.rememberSetIfUnset,
		uv.rememberHmac)
	if err != nil {
		return err
	}
	return uv.userGorm.Create(ctx, user)
}

// Update runs validations needed for updating a User record in the database.
// It will hash a remember token if one is provided.
func (uv *userValidator) Update(ctx context.Context, user *domain.User) error {
	err := runUserValFns(ctx, user,
		uv.passwordBcrypt,
		uv.rememberHmac)
	if err != nil {
		return err
	}
	return uv.userGorm.Update(ctx, user)
}

// runUserValFns runs any number of functions of type userValFn on the passed
// in User object. Field-scoped validation errors are collected across all
// functions and returned as one error; any other error aborts immediately.
func runUserValFns(ctx context.Context, user *domain.User, fns ...userValFn) error {
	fields := make(map[string][]string)
	for _, fn := range fns {
		if err := fn(ctx, user); err != nil {
			var e *errs.Error
			if errors.As(err, &e) && e.Code == errs.EINVALID && e.Field != "" {
				fields[e.Field] = append(fields[e.Field], e.Message)
				continue
			}
			return err
		}
	}
	if len(fields) > 0 {
		return errs.FieldErrors(fields)
	}
	return nil
}

// A userValFn is any function that takes in a context and a pointer to a
// domain.User object and returns an error.
type userValFn func(ctx context.Context, user *domain.User) error

// usernameRequired makes sure that the username is not the empty string.
func (uv *userValidator) usernameRequired(ctx context.Context, user *domain.User) error {
	if user.Username == "" {
		return errs.FieldErrorf("username", "A username is required.")
	}
	return nil
}

// usernameIsAvail makes sure that a provided username is not yet taken.
// The lookup is a case-sensitive exact match.
func (uv *userValidator) usernameIsAvail(ctx context.Context, user *domain.User) error {
	if user.Username == "" {
		return nil
	}
	existing, err := uv.userGorm.ByUsername(ctx, user.Username)
	if errs.ErrorCode(err) == errs.ENOTFOUND {
		// Username is not taken.
		return nil
	}
	if err != nil {
		return err
	}
	if user.ID != existing.ID {
		return errs.FieldErrorf("username", "This username is already taken.")
	}
	return nil
}

// emailNormalize converts the email to all lowercase and trims its whitespaces.
func (uv *userValidator) emailNormalize(ctx context.Context, user *domain.User) error {
	user.Email = strings.ToLower(user.Email)
	user.Email = strings.TrimSpace(user.Email)
	return nil
}

// emailRequired makes sure that the email is not the empty string.
func (uv *userValidator) emailRequired(ctx context.Context, user *domain.User) error {
	if user.Email == "" {
		return errs.FieldErrorf("email", "An email address is required.")
	}
	return nil
}

// emailFormat makes sure that a provided email address matches a predefined
// regex pattern.
func (uv *userValidator) emailFormat(ctx context.Context, user *domain.User) error {
	if user.Email == "" {
		return nil
	}
	if !uv.emailRegex.MatchString(user.Email) {
		return errs.FieldErrorf("email", "The email address is invalid.")
	}
	return nil
}

// passwordRequired makes sure that the user's password is not the empty string.
func (uv *userValidator) passwordRequired(ctx context.Context, user *domain.User) error {
	if user.Password == "" {
		return errs.FieldErrorf("password1", "A password is required.")
	}
	return nil
}

// passwordMinLength makes sure that the user's password is at least 8
// characters long.
func (uv *userValidator) passwordMinLength(ctx context.Context, user *domain.User) error {
	if user.Password == "" {
		return nil
	}
	if utf8.RuneCountInString(user.Password) < 8 {
		return errs.FieldErrorf("password1", "The password must have at least 8 characters.")
	}
	return nil
}

// passwordNotNumeric makes sure that the user's password is not made up of
// digits only.
func (uv *userValidator) passwordNotNumeric(ctx context.Context, user *domain.User) error {
	if user.Password == "" {
		return nil
	}
	for _, r := range user.Password {
		if !unicode.IsDigit(r) {
			return nil
		}
	}
	return errs.FieldErrorf("password1", "The password must not be entirely numeric.")
}

// passwordNotSimilar makes sure that the user's password is not too similar
// to the username or the local part of the email address. Similarity is a
// case-folded containment check in either direction; attributes shorter
// than four characters are skipped to avoid trivial matches.
func (uv *userValidator) passwordNotSimilar(ctx context.Context, user *domain.User) error {
	if user.Password == "" {
		return nil
	}
	pw := strings.ToLower(user.Password)
	attrs := []string{strings.ToLower(user.Username)}
	if at := strings.IndexByte(user.Email, '@'); at > 0 {
		attrs = append(attrs, strings.ToLower(user.Email[:at]))
	}
	for _, attr := range attrs {
		if utf8.RuneCountInString(attr) < 4 {
			continue
		}
		if strings.Contains(pw, attr) || strings.Contains(attr, pw) {
			return errs.FieldErrorf("password1", "The password is too similar to the username or email address.")
		}
	}
	return nil
}

// passwordConfirmMatch makes sure that the password confirmation matches the
// primary password.
func (uv *userValidator) passwordConfirmMatch(ctx context.Context, user *domain.User) error {
	if user.Password != user.PasswordConfirm {
		return errs.FieldErrorf("password2", "The two password fields do not match.")
	}
	return nil
}

// passwordBcrypt hashes a user's password with a predefined pepper.
// It then clears the raw password on the user object in memory.
func (uv *userValidator) passwordBcrypt(ctx context.Context, user *domain.User) error {
	if user.Password == "" {
		return nil
	}
	pwBytes := []byte(user.Password + uv.pepper)
	hashedBytes, err := bcrypt.GenerateFromPassword(pwBytes, bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hashedBytes)
	user.Password = ""
	user.PasswordConfirm = ""
	return nil
}

// rememberSetIfUnset creates the user's remember token if none is provided.
func (uv *userValidator) rememberSetIfUnset(ctx context.Context, user *domain.User) error {
	if user.Remember != "" {
		return nil
	}
	token, err := auth.MakeRememberToken()
	if err != nil {
		return err
	}
	user.Remember = token
	return nil
}

// rememberHmac creates the user's remember token hash, if a remember token
// has been provided.
func (uv *userValidator) rememberHmac(ctx context.Context, user *domain.User) error {
	if user.Remember == "" {
		return nil
	}
	user.RememberHash = uv.hmac.Hash(user.Remember)
	return nil
}

// ByID retrieves a User database record by ID.
func (ug *userGorm) ByID(ctx context.Context, id int) (*domain.User, error) {
	var user domain.User
	err := ug.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.Errorf(errs.ENOTFOUND, "The user does not exist.")
		}
		return nil, err
	}
	return &user, nil
}

// ByUsername retrieves a User database record by its exact username.
func (ug *userGorm) ByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	err := ug.db.WithContext(ctx).First(&user, "username = ?", username).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.Errorf(errs.ENOTFOUND, "The user does not exist.")
		}
		return nil, err
	}
	return &user, nil
}

// ByRemember retrieves a User database record by its hashed remember token.
// The checkUser middleware calls this on every request, trying to identify
// a user by the remember token from the request cookie.
func (ug *userGorm) ByRemember(ctx context.Context, rememberHash string) (*domain.User, error) {
	var user domain.User
	err := ug.db.WithContext(ctx).First(&user, "remember_hash = ?", rememberHash).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.Errorf(errs.ENOTFOUND, "The user does not exist.")
		}
		return nil, err
	}
	return &user, nil
}

// Create stores the data from the User object in a new database record.
func (ug *userGorm) Create(ctx context.Context, user *domain.User) error {
	return ug.db.WithContext(ctx).Create(user).Error
}

// Update saves changes to an existing user record in the database.
func (ug *userGorm) Update(ctx context.Context, user *domain.User) error {
	return ug.db.WithContext(ctx).Save(user).Error
}
