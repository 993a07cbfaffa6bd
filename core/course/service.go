package course

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/labtrack/backend/core"
)

var (
	// errors
	ErrNotFound     = fmt.Errorf("course %w", core.ErrNotFound)
	ErrItemNotFound = fmt.Errorf("item %w", core.ErrNotFound)
)

type (
	Repository interface {
		// CreateCourse inserts the course with its items, all or nothing.
		CreateCourse(ctx context.Context, c Course, items []Item) (Course, error)
		QueryCourses(ctx context.Context) ([]Course, error)
		GetCourse(ctx context.Context, id int) (Course, error)
		// DeleteCourse removes the course with its items, enrollments, completions and discussions.
		DeleteCourse(ctx context.Context, id int) error
		CreateItem(ctx context.Context, item Item) (Item, error)
		GetItem(ctx context.Context, kind Kind, id int) (Item, error)
		QueryItems(ctx context.Context, kind Kind, courseID int) ([]Item, error)
		CountItems(ctx context.Context, courseID int) (ItemCounts, error)
	}

	Service interface {
		QueryAll(ctx context.Context) ([]Course, error)
		GetByID(ctx context.Context, id int) (Course, error)
		Create(ctx context.Context, nc NewCourse) (Course, error)
		Delete(ctx context.Context, id int) error
		CreateItem(ctx context.Context, courseID int, kind Kind, ni NewItem) (Item, error)
		GetItem(ctx context.Context, kind Kind, id int) (Item, error)
		QueryItems(ctx context.Context, kind Kind, courseID int) ([]Item, error)
		CountItems(ctx context.Context, courseID int) (ItemCounts, error)
	}

	service struct {
		repo     Repository
		validate *validator.Validate
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, validate *validator.Validate) Service {
	return &service{repo: repo, validate: validate}
}

func (svc *service) QueryAll(ctx context.Context) ([]Course, error) {
	courses, err := svc.repo.QueryCourses(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}
	return courses, nil
}

func (svc *service) GetByID(ctx context.Context, id int) (Course, error) {
	return svc.repo.GetCourse(ctx, id)
}

// Create creates the course with its labs, quizzes and exams, in order.
func (svc *service) Create(ctx context.Context, nc NewCourse) (Course, error) {
	nc.Clean()
	if err := svc.validate.Struct(nc); err != nil {
		return Course{}, err
	}

	newItems := nc.items()
	items := make([]Item, 0, len(nc.Labs)+len(nc.Quizzes)+len(nc.Exams))
	for _, kind := range Kinds {
		for _, ni := range newItems[kind] {
			items = append(items, Item{Kind: kind, Title: ni.Title, Description: ni.Description})
		}
	}

	c, err := svc.repo.CreateCourse(ctx, Course{
		Title:        nc.Title,
		Description:  nc.Description,
		InstructorID: nc.InstructorID,
	}, items)
	if err != nil {
		return Course{}, errors.Wrap(err, "creating course")
	}
	return c, nil
}

// CreateItem adds a lab, a quiz or an exam to an existing course.
func (svc *service) CreateItem(ctx context.Context, courseID int, kind Kind, ni NewItem) (Item, error) {
	if !kind.Valid() {
		return Item{}, errors.Errorf("invalid item kind %q", kind)
	}
	ni.Title = core.CleanString(ni.Title)
	ni.Description = core.CleanString(ni.Description)
	if err := svc.validate.Struct(ni); err != nil {
		return Item{}, err
	}
	if _, err := svc.repo.GetCourse(ctx, courseID); err != nil {
		return Item{}, err
	}
	item, err := svc.repo.CreateItem(ctx, Item{CourseID: courseID, Kind: kind, Title: ni.Title, Description: ni.Description})
	if err != nil {
		return Item{}, errors.Wrapf(err, "creating %s %q", kind, ni.Title)
	}
	return item, nil
}

func (svc *service) Delete(ctx context.Context, id int) error {
	if _, err := svc.repo.GetCourse(ctx, id); err != nil {
		return err
	}
	return svc.repo.DeleteCourse(ctx, id)
}

func (svc *service) GetItem(ctx context.Context, kind Kind, id int) (Item, error) {
	if !kind.Valid() {
		return Item{}, ErrItemNotFound
	}
	return svc.repo.GetItem(ctx, kind, id)
}

func (svc *service) QueryItems(ctx context.Context, kind Kind, courseID int) ([]Item, error) {
	items, err := svc.repo.QueryItems(ctx, kind, courseID)
	if err != nil {
		return nil, errors.Wrapf(err, "querying %s items", kind)
	}
	return items, nil
}

func (svc *service) CountItems(ctx context.Context, courseID int) (ItemCounts, error) {
	counts, err := svc.repo.CountItems(ctx, courseID)
	if err != nil {
		return nil, errors.Wrap(err, "counting items")
	}
	return counts, nil
}
