package notify

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/mbatrack/core"
	"github.com/trezcool/mbatrack/core/deadline"
)

// ReminderWindow is how far ahead SendReminders looks for due deadlines.
const ReminderWindow = 30 * time.Minute

const (
	noDeadlinesMessage = "No deadlines approaching in the next 30 minutes."
	noDevicesMessage   = "Deadlines found, but no mobile devices registered."
)

type (
	// Token is a registered mobile device push token.
	Token struct {
		ID        string    `json:"id" db:"id"`
		Token     string    `json:"token" db:"token"`
		CreatedAt time.Time `json:"created_at" db:"created_at"`
	}

	RegisterToken struct {
		Token string `json:"token" validate:"required,min=10"`
	}

	Notification struct {
		Title string
		Body  string
	}

	// Result sums up a reminder run.
	Result struct {
		Processed int    `json:"processed"`
		Sent      int    `json:"sent"`
		Message   string `json:"message"`
	}

	// Pusher delivers a notification to one device.
	Pusher interface {
		Push(ctx context.Context, token string, n Notification) error
	}

	Repository interface {
		// UpsertToken stores the token once, keeping the existing row on conflict.
		UpsertToken(ctx context.Context, t Token) (Token, error)
		QueryTokens(ctx context.Context) ([]Token, error)
	}

	Service interface {
		Register(ctx context.Context, rt RegisterToken) (Token, error)
		SendReminders(ctx context.Context) (Result, error)
	}

	service struct {
		repo        Repository
		deadlineSvc deadline.Service
		pusher      Pusher
		mailSvc     core.EmailService
		validate    *validator.Validate
		logger      core.Logger
		conf        *core.Config
		nowFunc     func() time.Time
	}
)

var _ Service = (*service)(nil)

func (rt *RegisterToken) Validate(validate *validator.Validate) error {
	rt.Token = core.CleanString(rt.Token)
	return validate.Struct(rt)
}

func NewService(
	repo Repository,
	deadlineSvc deadline.Service,
	pusher Pusher,
	mailSvc core.EmailService,
	validate *validator.Validate,
	logger core.Logger,
	conf *core.Config,
) Service {
	return &service{
		repo:        repo,
		deadlineSvc: deadlineSvc,
		pusher:      pusher,
		mailSvc:     mailSvc,
		validate:    validate,
		logger:      logger,
		conf:        conf,
		nowFunc:     time.Now,
	}
}

func (svc *service) Register(ctx context.Context, rt RegisterToken) (Token, error) {
	if err := rt.Validate(svc.validate); err != nil {
		return Token{}, err
	}
	t, err := svc.repo.UpsertToken(ctx, Token{
		ID:        uuid.NewString(),
		Token:     rt.Token,
		CreatedAt: svc.nowFunc().UTC(),
	})
	return t, errors.Wrap(err, "registering token")
}

// DeadlineNotification builds the push notification announcing d.
func DeadlineNotification(d deadline.Deadline) Notification {
	code := "Course"
	if d.Course != nil && d.Course.Code != "" {
		code = d.Course.Code
	}
	return Notification{
		Title: "⏰ Deadline Alert: " + code,
		Body:  `"` + d.Title + `" is due in the next 30 minutes! Stay focused.`,
	}
}

// SendReminders pushes a notification to every registered device for each open deadline due within ReminderWindow.
// Failed pushes are logged and skipped.
func (svc *service) SendReminders(ctx context.Context) (Result, error) {
	now := svc.nowFunc().UTC()
	deadlines, err := svc.deadlineSvc.DueBetween(ctx, now, now.Add(ReminderWindow))
	if err != nil {
		return Result{}, errors.Wrap(err, "querying due deadlines")
	}
	if len(deadlines) == 0 {
		return Result{Message: noDeadlinesMessage}, nil
	}

	svc.sendDigest(deadlines)

	tokens, err := svc.repo.QueryTokens(ctx)
	if err != nil {
		return Result{}, errors.Wrap(err, "querying tokens")
	}
	if len(tokens) == 0 {
		return Result{Processed: len(deadlines), Message: noDevicesMessage}, nil
	}

	res := Result{Processed: len(deadlines)}
	for _, d := range deadlines {
		n := DeadlineNotification(d)
		for _, t := range tokens {
			if err := svc.pusher.Push(ctx, t.Token, n); err != nil {
				svc.logger.Warn("pushing deadline reminder", core.NewDelegateError("pusher", err), map[string]interface{}{"deadline": d.ID})
				continue
			}
			res.Sent++
		}
	}
	res.Message = fmt.Sprintf("Processed %d deadlines. Sent %d notifications.", res.Processed, res.Sent)
	svc.logger.Info("deadline reminders sent", map[string]interface{}{"processed": res.Processed, "sent": res.Sent})
	return res, nil
}

type digestItem struct {
	Course string
	Title  string
	Due    string
}

// sendDigest emails the due deadlines to the configured reminder address, if any.
func (svc *service) sendDigest(deadlines []deadline.Deadline) {
	if svc.mailSvc == nil || svc.conf.ReminderEmail == "" {
		return
	}
	to, err := mail.ParseAddress(svc.conf.ReminderEmail)
	if err != nil {
		svc.logger.Warn("invalid reminder email", err)
		return
	}

	items := make([]digestItem, 0, len(deadlines))
	for _, d := range deadlines {
		items = append(items, digestItem{
			Course: d.CourseLabel(),
			Title:  d.Title,
			Due:    d.DueDate.In(svc.conf.Location()).Format("Jan 2, 15:04"),
		})
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{*to},
		Subject:      fmt.Sprintf("%d deadline(s) due soon", len(deadlines)),
		TemplateName: "deadline_reminder",
		TemplateData: items,
	})
}
