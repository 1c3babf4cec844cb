package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/beiwe-client/internal/client/models"
	"github.com/dmitrijs2005/beiwe-client/internal/client/services"
	"github.com/dmitrijs2005/beiwe-client/internal/common"
	"github.com/dmitrijs2005/beiwe-client/internal/logging"
)

// Registrar runs the two-phase registration.
type Registrar interface {
	Register(ctx context.Context, req services.RegistrationRequest) (int, error)
	Finish(ctx context.Context, newPassword string) (services.NextStep, error)
}

// Uploader runs one upload batch.
type Uploader interface {
	RunBatch(ctx context.Context) error
}

// Notifier sends notification requests.
type Notifier interface {
	SetPushToken(ctx context.Context, token string) error
	SendTestNotification(ctx context.Context) error
	SendSurveyNotification(ctx context.Context) error
	Wait()
}

// Messages is the stored push message inbox.
type Messages interface {
	HandleNewMessage(ctx context.Context, content string) (models.StoredMessage, error)
	List(ctx context.Context) ([]models.StoredMessage, error)
	Delete(ctx context.Context, id string) error
}

// StatusStore is the read side of local state shown by status and log.
type StatusStore interface {
	IsRegistered(ctx context.Context) (bool, error)
	ServerURL(ctx context.Context) (string, error)
	Credentials(ctx context.Context) (models.Credentials, error)
	Study(ctx context.Context) (*models.Study, error)
	CheckBadRegistration(ctx context.Context) (bool, error)
	DebugLog(ctx context.Context, limit int) ([]models.DebugEntry, error)
	Crashes(ctx context.Context) ([]models.CrashEvent, error)
}

// Enqueuer accepts files for upload.
type Enqueuer interface {
	Add(name string, r io.Reader) error
}

// Deps are the collaborators an App drives.
type Deps struct {
	Registrar Registrar
	Uploader  Uploader
	Notifier  Notifier
	Messages  Messages
	Store     StatusStore
	Queue     Enqueuer
	Logger    logging.Logger
}

// Options are the App settings taken from config.
type Options struct {
	CustomizableServerURL bool
	DefaultServerURL      string
	UploadInterval        time.Duration
}

type App struct {
	Deps
	opts   Options
	reader *bufio.Reader
	out    io.Writer
}

func NewApp(deps Deps, opts Options) *App {
	return &App{Deps: deps, opts: opts, reader: bufio.NewReader(os.Stdin), out: os.Stdout}
}

// Run starts the upload scheduler and the REPL, and waits for pending
// notification sends once the user exits.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if a.opts.UploadInterval > 0 {
		go a.StartUploadScheduler(ctx, a.opts.UploadInterval)
	}

	printlnFn("Beiwe device client (type 'help' for commands)")
	runREPL(ctx, a, func() string { return a.getStatus(ctx) }, bufio.NewScanner(a.reader))

	cancel()
	a.Notifier.Wait()
}

// StartUploadScheduler runs an upload batch every interval until ctx ends.
// An unregistered device is skipped silently.
func (a *App) StartUploadScheduler(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			err := a.Uploader.RunBatch(ctx)
			switch {
			case err == nil, errors.Is(err, common.ErrNotRegistered), errors.Is(err, context.Canceled):
			default:
				a.Logger.Warn(ctx, "scheduled upload failed", "error", err)
			}

		case <-ctx.Done():
			return
		}
	}
}

func (a *App) isRegistered(ctx context.Context) bool {
	ok, err := a.Store.IsRegistered(ctx)
	return err == nil && ok
}

func (a *App) getStatus(ctx context.Context) string {
	if !a.isRegistered(ctx) {
		return "(unregistered)"
	}
	creds, err := a.Store.Credentials(ctx)
	if err != nil {
		return ""
	}
	return "(" + creds.PatientID + ")"
}
