package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/roach88/papersearch/internal/confspec"
	"github.com/roach88/papersearch/internal/ir"
	"github.com/roach88/papersearch/internal/metrics"
	"github.com/roach88/papersearch/internal/search"
	"github.com/roach88/papersearch/internal/store"
)

// session holds what a command needs to search: the open store, the
// conference settings, the user directory and the acting user.
type session struct {
	store    *store.Store
	conf     *ir.Conf
	contacts *search.ContactList
	user     *ir.Contact
	registry *prometheus.Registry
	metrics  *metrics.Metrics
}

// openSession opens the database and settings named by opts. Failures
// are ExitErrors reported through f.
func openSession(ctx context.Context, opts *RootOptions, f *OutputFormatter) (*session, error) {
	if opts.DB == "" {
		return nil, f.Fail(ExitCommandError, ErrCodeNoDatabase, "no database: use --db or set db in the config file", nil)
	}
	conf, err := loadConf(opts.Conf)
	if err != nil {
		return nil, f.Fail(ExitFailure, ErrCodeSettings, "failed to load settings", err)
	}

	f.VerboseLog("Opening database %s", opts.DB)
	st, err := store.Open(opts.DB, store.WithLogger(slog.Default()))
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeNoDatabase, "failed to open database", err)
	}

	contacts, err := st.LoadContacts(ctx)
	if err != nil {
		st.Close()
		return nil, f.Fail(ExitFailure, ErrCodeGeneric, "failed to load contacts", err)
	}
	s := &session{
		store:    st,
		conf:     conf,
		contacts: search.NewContactList(contacts),
		registry: prometheus.NewRegistry(),
	}
	s.metrics = metrics.New(s.registry)

	switch opts.User {
	case "":
	case "root":
		s.user = ir.SiteContact()
	default:
		if s.user = s.contacts.ByEmail(opts.User); s.user == nil {
			st.Close()
			return nil, f.Fail(ExitCommandError, ErrCodeUnknownUser, fmt.Sprintf("unknown user %q", opts.User), nil)
		}
	}
	return s, nil
}

func (s *session) Close() error {
	return s.store.Close()
}

// newSearch starts a search by the session's user.
func (s *session) newSearch(p search.Params) *search.PaperSearch {
	return search.NewPaperSearch(s.user, p,
		search.WithConf(s.conf),
		search.WithContacts(s.contacts),
		search.WithRowSource(s.store),
		search.WithLogger(slog.Default()),
		search.WithMetrics(s.metrics))
}

// writeMetrics writes the session's metrics in the Prometheus text
// format. An empty path writes nothing.
func (s *session) writeMetrics(path string) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, s.registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}

// loadConf compiles the settings at path, a CUE file or a directory
// holding a CUE package. No path means default settings.
func loadConf(path string) (*ir.Conf, error) {
	if path == "" {
		return &ir.Conf{}, nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("settings: %w", err)
	}
	if info.IsDir() {
		return confspec.LoadDir(path)
	}
	return confspec.LoadFile(path)
}
