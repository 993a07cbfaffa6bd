package user

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/labtrack/backend/core"
)

var (
	// errors
	ErrNotFound           = fmt.Errorf("user %w", core.ErrNotFound)
	ErrUserExists         = errors.New("email or student ID already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type (
	Repository interface {
		// CheckUniqueness returns ErrUserExists if another user has the email or the student ID.
		CheckUniqueness(ctx context.Context, email, studentID string, excludedUsers ...User) error
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUser(ctx context.Context, filter GetFilter) (User, error)
		UpdateUser(ctx context.Context, usr User) (User, error)
		// DeleteUser removes the user with its enrollments, completions and discussions.
		DeleteUser(ctx context.Context, id int) error
	}

	Service interface {
		CheckUniqueness(ctx context.Context, email, studentID string, excludedUsers ...User) error
		Signup(ctx context.Context, nu NewUser) (User, error)
		Authenticate(ctx context.Context, creds Credentials) (User, error)
		GetByID(ctx context.Context, id int) (User, error)
		GetByEmail(ctx context.Context, email string) (User, error)
		AddUser(ctx context.Context, nu NewUser, isInstructor bool) (User, error)
		ResetPassword(ctx context.Context, email, pwd string) error
		Delete(ctx context.Context, id int) error
	}

	service struct {
		repo    Repository
		mailSvc core.EmailService
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, mailSvc core.EmailService) Service {
	return &service{repo: repo, mailSvc: mailSvc}
}

func (svc *service) CheckUniqueness(ctx context.Context, email, studentID string, excludedUsers ...User) error {
	if err := svc.repo.CheckUniqueness(ctx, email, studentID, excludedUsers...); err != nil {
		if errors.Is(err, ErrUserExists) {
			return core.NewValidationError(ErrUserExists)
		}
		return errors.Wrap(err, "checking user uniqueness")
	}
	return nil
}

// Signup creates a student account and sends a welcome email. nu must be validated.
func (svc *service) Signup(ctx context.Context, nu NewUser) (User, error) {
	usr, err := svc.create(ctx, nu, false)
	if err != nil {
		return User{}, err
	}
	svc.mailSvc.SendMessages(welcomeMessage(usr))
	return usr, nil
}

func (svc *service) create(ctx context.Context, nu NewUser, isInstructor bool) (User, error) {
	usr := User{
		Name:         nu.Name,
		Email:        nu.Email,
		StudentID:    nu.StudentID,
		Track:        nu.Track,
		IsInstructor: isInstructor,
		CreatedAt:    time.Now().UTC(),
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "setting password")
	}
	usr, err := svc.repo.CreateUser(ctx, usr)
	if err != nil {
		if errors.Is(err, ErrUserExists) { // lost a race against CheckUniqueness
			return User{}, core.NewValidationError(ErrUserExists)
		}
		return User{}, errors.Wrap(err, "creating user")
	}
	return usr, nil
}

func (svc *service) Authenticate(ctx context.Context, creds Credentials) (User, error) {
	creds.Clean()
	if creds.Email == "" || creds.Password == "" {
		return User{}, ErrInvalidCredentials
	}
	usr, err := svc.repo.GetUser(ctx, GetFilter{Email: creds.Email})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, errors.Wrap(err, "finding user by email")
	}
	if err = usr.CheckPassword(creds.Password); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return usr, nil
}

func (svc *service) GetByID(ctx context.Context, id int) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{ID: id})
}

func (svc *service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{Email: core.CleanString(email, true /* lower */)})
}

// AddUser updates or creates a User. Used by the admin CLI, it skips the welcome email.
func (svc *service) AddUser(ctx context.Context, nu NewUser, isInstructor bool) (User, error) {
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	usr, err := svc.GetByEmail(ctx, nu.Email)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return User{}, err
		}
		if err = svc.CheckUniqueness(ctx, nu.Email, nu.StudentID); err != nil {
			return User{}, err
		}
		return svc.create(ctx, nu, isInstructor)
	}

	if nu.StudentID != "" && nu.StudentID != usr.StudentID {
		if err = svc.CheckUniqueness(ctx, "", nu.StudentID, usr); err != nil {
			return User{}, err
		}
		usr.StudentID = nu.StudentID
	}
	if nu.Name != "" {
		usr.Name = nu.Name
	}
	if nu.Track != "" {
		usr.Track = nu.Track
	}
	usr.IsInstructor = isInstructor
	if err = usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "setting password")
	}
	usr, err = svc.repo.UpdateUser(ctx, usr)
	if err != nil {
		if errors.Is(err, ErrUserExists) {
			return User{}, core.NewValidationError(ErrUserExists)
		}
		return User{}, errors.Wrap(err, "updating user")
	}
	return usr, nil
}

func (svc *service) ResetPassword(ctx context.Context, email, pwd string) error {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if err = usr.SetPassword(pwd); err != nil {
		return errors.Wrap(err, "setting password")
	}
	if _, err = svc.repo.UpdateUser(ctx, usr); err != nil {
		return errors.Wrap(err, "updating user")
	}
	return nil
}

func (svc *service) Delete(ctx context.Context, id int) error {
	if _, err := svc.GetByID(ctx, id); err != nil {
		return err
	}
	return svc.repo.DeleteUser(ctx, id)
}

func welcomeMessage(usr User) *core.EmailMessage {
	return &core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      "Welcome!",
		TemplateName: "welcome",
		TemplateData: usr,
	}
}
