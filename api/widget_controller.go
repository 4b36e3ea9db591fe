package api

import (
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-widget-auth"
	"github.com/goliatone/go-widget-auth/middleware/jwtware"
)

// WidgetPayload is the create and update body. Update takes the name from the path.
type WidgetPayload struct {
	Name     string `form:"name" json:"name"`
	InfoURL  string `form:"info_url" json:"info_url"`
	Deadline string `form:"deadline" json:"deadline"`
}

// Validate will validate the payload
func (r WidgetPayload) Validate(now func() time.Time) error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, required, validation.By(ValidateWidgetName)),
		validation.Field(&r.InfoURL, required, validation.By(ValidateWidgetURL)),
		validation.Field(&r.Deadline, required, validation.By(ValidateDeadline(now))),
	)
}

// OwnerBody is the public view of a widget owner
type OwnerBody struct {
	Email    string `json:"email"`
	PublicID string `json:"public_id"`
}

// WidgetBody is the public view of a widget
type WidgetBody struct {
	Name           string     `json:"name"`
	InfoURL        string     `json:"info_url"`
	CreatedAt      string     `json:"created_at"`
	Deadline       string     `json:"deadline"`
	DeadlinePassed bool       `json:"deadline_passed"`
	TimeRemaining  string     `json:"time_remaining"`
	Owner          *OwnerBody `json:"owner,omitempty"`
	Link           string     `json:"link"`
}

type WidgetController struct {
	Logger auth.Logger
	Repo   auth.RepositoryManager
	// BaseURL overrides the request base URL in links and Location headers
	BaseURL    string
	Clock      func() time.Time
	ContextKey string
}

func (w *WidgetController) now() time.Time {
	if w.Clock != nil {
		return w.Clock()
	}
	return time.Now()
}

func (w *WidgetController) widgetURL(c *fiber.Ctx, name string) string {
	base := w.BaseURL
	if base == "" {
		base = c.BaseURL()
	}
	return fmt.Sprintf("%s%s/widgets/%s", strings.TrimRight(base, "/"), Prefix, name)
}

func (w *WidgetController) toBody(c *fiber.Ctx, widget *auth.Widget) WidgetBody {
	now := w.now()
	body := WidgetBody{
		Name:           widget.Name,
		InfoURL:        widget.InfoURL,
		CreatedAt:      widget.CreatedAt.UTC().Format(time.RFC3339),
		Deadline:       widget.Deadline.Format(DeadlineOutputLayout),
		DeadlinePassed: widget.DeadlinePassed(now),
		TimeRemaining:  remaining(widget.TimeRemaining(now)),
		Link:           w.widgetURL(c, widget.Name),
	}
	if widget.Owner != nil {
		body.Owner = &OwnerBody{
			Email:    widget.Owner.Email,
			PublicID: widget.Owner.PublicID.String(),
		}
	}
	return body
}

func (w *WidgetController) parse(c *fiber.Ctx, payload *WidgetPayload) (*auth.Widget, error) {
	if err := c.BodyParser(payload); err != nil {
		w.Logger.Error("widget parse payload", "error", err)
		return nil, err
	}
	return w.validated(payload)
}

func (w *WidgetController) owner(c *fiber.Ctx) (*auth.User, error) {
	claims, ok := jwtware.ClaimsFrom(c, w.ContextKey)
	if !ok {
		return nil, auth.ErrNoCredentials
	}
	return w.Repo.Users().FindByPublicID(c.UserContext(), claims.PublicID())
}

// Create adds a widget owned by the caller
func (w *WidgetController) Create(c *fiber.Ctx) error {
	widget, err := w.parse(c, new(WidgetPayload))
	if err != nil {
		return validationFailed(c, err)
	}

	return w.create(c, widget)
}

func (w *WidgetController) create(c *fiber.Ctx, widget *auth.Widget) error {
	ctx := c.UserContext()

	if _, err := w.Repo.Widgets().FindByName(ctx, widget.Name); err == nil {
		return fail(c, fiber.StatusConflict, fmt.Sprintf("Widget name: %s already exists, must be unique.", widget.Name))
	} else if !auth.IsNotFound(err) {
		return writeError(c, w.Logger, err)
	}

	owner, err := w.owner(c)
	if err != nil {
		return writeError(c, w.Logger, err)
	}

	widget.OwnerID = owner.ID
	widget.CreatedAt = w.now().UTC()
	if _, err := w.Repo.Widgets().Save(ctx, widget); err != nil {
		return writeError(c, w.Logger, err)
	}

	c.Location(w.widgetURL(c, widget.Name))
	return success(c, fiber.StatusCreated, fmt.Sprintf("New widget added: %s.", widget.Name))
}

// List returns one page of widgets
func (w *WidgetController) List(c *fiber.Ctx) error {
	page, err := ParsePageRequest(c)
	if err != nil {
		return validationFailed(c, err)
	}

	records, total, err := w.Repo.Widgets().Page(c.UserContext(), page.Page, page.PerPage)
	if err != nil {
		return writeError(c, w.Logger, err)
	}

	items := make([]WidgetBody, 0, len(records))
	for _, record := range records {
		items = append(items, w.toBody(c, record))
	}

	base := w.BaseURL
	if base == "" {
		base = c.BaseURL()
	}
	result := NewPagination(page, total, strings.TrimRight(base, "/")+Prefix+"/widgets", items)
	if result.Page > result.TotalPages {
		return fail(c, fiber.StatusNotFound, fmt.Sprintf("page %d is out of range, last page is %d.", result.Page, result.TotalPages))
	}
	c.Set(fiber.HeaderLink, result.linkHeader())
	c.Set("Total-Count", fmt.Sprint(total))

	return c.JSON(result)
}

// Get returns a widget by name
func (w *WidgetController) Get(c *fiber.Ctx) error {
	name := strings.ToLower(c.Params("name"))
	widget, err := w.Repo.Widgets().FindByName(c.UserContext(), name)
	if err != nil {
		if auth.IsNotFound(err) {
			return fail(c, fiber.StatusNotFound, fmt.Sprintf("%s not found in database.", name))
		}
		return writeError(c, w.Logger, err)
	}
	return c.JSON(w.toBody(c, widget))
}

// Update changes a widget, or creates it when missing
func (w *WidgetController) Update(c *fiber.Ctx) error {
	payload := &WidgetPayload{}
	if err := c.BodyParser(payload); err != nil {
		return validationFailed(c, err)
	}
	payload.Name = c.Params("name")

	widget, err := w.validated(payload)
	if err != nil {
		return validationFailed(c, err)
	}

	ctx := c.UserContext()
	existing, err := w.Repo.Widgets().FindByName(ctx, widget.Name)
	if err != nil {
		if auth.IsNotFound(err) {
			return w.create(c, widget)
		}
		return writeError(c, w.Logger, err)
	}

	existing.InfoURL = widget.InfoURL
	existing.Deadline = widget.Deadline
	if _, err := w.Repo.Widgets().Save(ctx, existing); err != nil {
		return writeError(c, w.Logger, err)
	}

	return success(c, fiber.StatusOK, fmt.Sprintf("'%s' was successfully updated", existing.Name))
}

func (w *WidgetController) validated(payload *WidgetPayload) (*auth.Widget, error) {
	payload.Name = strings.ToLower(strings.TrimSpace(payload.Name))
	if err := payload.Validate(w.now); err != nil {
		return nil, err
	}

	deadline, err := ParseDeadline(payload.Deadline, w.now().Location())
	if err != nil {
		return nil, validation.Errors{"deadline": err}
	}

	return &auth.Widget{
		Name:     payload.Name,
		InfoURL:  payload.InfoURL,
		Deadline: deadline,
	}, nil
}

// Delete removes a widget by name
func (w *WidgetController) Delete(c *fiber.Ctx) error {
	name := strings.ToLower(c.Params("name"))
	if err := w.Repo.Widgets().DeleteByName(c.UserContext(), name); err != nil {
		if auth.IsNotFound(err) {
			return fail(c, fiber.StatusNotFound, fmt.Sprintf("%s not found in database.", name))
		}
		return writeError(c, w.Logger, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// remaining renders a duration rounded to the second, "0s" when past
func remaining(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}
	return d.Round(time.Second).String()
}
