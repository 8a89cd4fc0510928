package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/handlers"

	"github.com/tijnara/VERTEX-ER-asset-and-equipments/internal/alias"
	"github.com/tijnara/VERTEX-ER-asset-and-equipments/internal/api"
	"github.com/tijnara/VERTEX-ER-asset-and-equipments/internal/assemble"
	"github.com/tijnara/VERTEX-ER-asset-and-equipments/internal/blob"
	"github.com/tijnara/VERTEX-ER-asset-and-equipments/internal/config"
	"github.com/tijnara/VERTEX-ER-asset-and-equipments/internal/db"
	"github.com/tijnara/VERTEX-ER-asset-and-equipments/internal/model"
	"github.com/tijnara/VERTEX-ER-asset-and-equipments/internal/normalize"
	"github.com/tijnara/VERTEX-ER-asset-and-equipments/internal/resolve"
	"github.com/tijnara/VERTEX-ER-asset-and-equipments/internal/store"
	"github.com/tijnara/VERTEX-ER-asset-and-equipments/internal/upstream"
)

// levelRouter is a slog.Handler that routes records below ERROR to stdout and
// ERROR+ to stderr. Records below min are dropped; the zero value keeps INFO.
type levelRouter struct {
	stdout slog.Handler
	stderr slog.Handler
	min    slog.Level
}

func (lr *levelRouter) Enabled(_ context.Context, level slog.Level) bool {
	return level >= lr.min
}

func (lr *levelRouter) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		return lr.stderr.Handle(ctx, r)
	}
	return lr.stdout.Handle(ctx, r)
}

func (lr *levelRouter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelRouter{
		stdout: lr.stdout.WithAttrs(attrs),
		stderr: lr.stderr.WithAttrs(attrs),
		min:    lr.min,
	}
}

func (lr *levelRouter) WithGroup(name string) slog.Handler {
	return &levelRouter{
		stdout: lr.stdout.WithGroup(name),
		stderr: lr.stderr.WithGroup(name),
		min:    lr.min,
	}
}

// setupLogger configures structured logging. INFO/WARN go to stdout, ERROR goes
// to stderr, DEBUG is included when debug is set. If logPath is non-empty, all
// levels are also written to that file. Returns a cleanup function that closes
// the log file (if opened).
func setupLogger(logPath string, debug bool, stdout io.Writer) (func(), error) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var cleanup func()

	stdoutW := stdout
	stderrW := io.Writer(os.Stderr)

	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		cleanup = func() { f.Close() }
		stdoutW = io.MultiWriter(stdout, f)
		stderrW = io.MultiWriter(os.Stderr, f)
	}

	handler := &levelRouter{
		stdout: slog.NewTextHandler(stdoutW, opts),
		stderr: slog.NewTextHandler(stderrW, opts),
		min:    level,
	}
	slog.SetDefault(slog.New(handler))
	return cleanup, nil
}

const usage = `Usage: vertex [serve|migrate|assemble] [flags]

Commands:
  serve       run the HTTP service (default)
  migrate     create or upgrade the SQL schema
  assemble    read one JSON record from stdin, resolve its references and
              print the assembled result
                -kind <kind>   record kind (default: Asset)
                -save          also store the record itself; without it the
                               record is not stored, but missing reference
                               entities and items are still created and an
                               existing item may be relinked

`

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cmd := "serve"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}
	switch cmd {
	case "serve", "migrate", "assemble":
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		return 1
	}

	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	fs := cfg.FlagSet("vertex "+cmd, os.Stderr)
	kind := string(model.KindAsset)
	var save bool
	if cmd == "assemble" {
		fs.StringVar(&kind, "kind", kind, "")
		fs.BoolVar(&save, "save", false, "")
	}
	fs.Usage = func() {
		fmt.Fprint(os.Stdout, usage+config.Usage)
	}

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 1
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "unexpected argument: %s\n", fs.Arg(0))
		fs.Usage()
		return 1
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	// The assemble command prints its result on stdout, so logs go to stderr.
	logOut := io.Writer(os.Stdout)
	if cmd == "assemble" {
		logOut = os.Stderr
	}
	closeLog, err := setupLogger(cfg.LogPath, cfg.Debug, logOut)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	if closeLog != nil {
		defer closeLog()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch cmd {
	case "migrate":
		err = migrate(ctx, cfg)
	case "assemble":
		err = assembleRecord(ctx, cfg, kind, save, os.Stdin, os.Stdout)
	default:
		err = serve(ctx, cfg)
	}
	if err != nil {
		slog.Error(cmd+" failed", "error", err)
		return 1
	}
	return 0
}

// openSQL opens the configured SQL mirror and brings its schema up to date.
func openSQL(ctx context.Context, cfg *config.Config) (*db.Conn, error) {
	var (
		conn *db.Conn
		err  error
	)
	if cfg.Store == config.StorePostgres {
		conn, err = db.OpenPostgres(ctx, cfg.PostgresURL)
	} else {
		conn, err = db.Open(cfg.DBPath)
	}
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx, conn); err != nil {
		conn.Close()
		return nil, err
	}
	slog.Info("database ready", "dialect", conn.Dialect, "store", cfg.Store)
	return conn, nil
}

func migrate(ctx context.Context, cfg *config.Config) error {
	if cfg.Store != config.StoreSQLite && cfg.Store != config.StorePostgres {
		return fmt.Errorf("store %q has no schema to migrate", cfg.Store)
	}
	conn, err := openSQL(ctx, cfg)
	if err != nil {
		return err
	}
	return conn.Close()
}

// openStore returns the configured entity store wrapped with timeouts and,
// when a users file is given, the fallback user list.
func openStore(ctx context.Context, cfg *config.Config, norm *normalize.Normalizer) (store.EntityStore, func(), error) {
	var (
		s       store.EntityStore
		cleanup = func() {}
	)
	switch cfg.Store {
	case config.StoreSQLite, config.StorePostgres:
		conn, err := openSQL(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		s, cleanup = store.NewSQL(conn), func() { conn.Close() }
	case config.StoreUpstream:
		s = upstream.New(cfg.UpstreamURL, norm)
		slog.Info("using asset API", "url", cfg.UpstreamURL)
	case config.StoreMemory:
		s = store.NewMemory()
		slog.Warn("using in-memory store, records are lost on exit")
	}

	s = store.WithTimeouts(s, cfg.ReadTimeout, cfg.WriteTimeout)
	if cfg.UsersFile != "" {
		users, err := store.LoadUsers(cfg.UsersFile)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		s = store.WithFallbackUsers(s, users)
	}
	return s, cleanup, nil
}

// newAssembler builds the alias table, store and assembler from cfg.
func newAssembler(ctx context.Context, cfg *config.Config) (*assemble.Assembler, func(), error) {
	table := alias.Default()
	if cfg.AliasFile != "" {
		var err error
		if table, err = alias.LoadFile(cfg.AliasFile); err != nil {
			return nil, nil, err
		}
	}
	norm := normalize.New(table)

	s, cleanup, err := openStore(ctx, cfg, norm)
	if err != nil {
		return nil, nil, err
	}
	cache := resolve.NewCache(cfg.CacheSize, cfg.CacheTTL)
	return assemble.New(norm, resolve.New(s, cache)), cleanup, nil
}

func openBlobs(ctx context.Context, cfg *config.Config) (blob.Store, http.Handler, error) {
	if cfg.Blob == config.BlobS3 {
		s, err := blob.NewS3(ctx, blob.S3Config{
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			KeyPrefix: cfg.S3Prefix,
			Endpoint:  cfg.S3Endpoint,
			AccessID:  cfg.S3AccessID,
			AccessKey: cfg.S3AccessKey,
			URLExpiry: cfg.S3URLExpiry,
		})
		return s, nil, err
	}
	l, err := blob.NewLocal(cfg.UploadDir, cfg.PublicURL)
	if err != nil {
		return nil, nil, err
	}
	return l, http.FileServer(http.Dir(cfg.UploadDir)), nil
}

// recoveryLogger sends recovered panics to slog.
type recoveryLogger struct{}

func (recoveryLogger) Println(v ...any) {
	slog.Error("panic in handler", "error", fmt.Sprint(v...))
}

func serve(ctx context.Context, cfg *config.Config) error {
	asm, cleanup, err := newAssembler(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	blobs, uploads, err := openBlobs(ctx, cfg)
	if err != nil {
		return err
	}

	router := api.NewRouter(api.Deps{
		Assembler: asm,
		Blobs:     blobs,
		Uploads:   uploads,
		MaxUpload: cfg.MaxUpload,
	})

	cors := []handlers.CORSOption{
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	}
	if origins := cfg.Origins(); len(origins) > 0 {
		cors = append(cors, handlers.AllowedOrigins(origins))
	}
	handler := handlers.CORS(cors...)(
		handlers.RecoveryHandler(handlers.RecoveryLogger(recoveryLogger{}))(
			api.LoggingMiddleware(router)))

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", cfg.Addr, "store", cfg.Store, "blob", cfg.Blob)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

// assembleRecord reads one JSON object from in, assembles it and writes the
// result to out. Assembling writes to the store: it creates missing reference
// entities and items and may relink an existing item. save additionally
// stores the record itself.
func assembleRecord(ctx context.Context, cfg *config.Config, kindName string, save bool, in io.Reader, out io.Writer) error {
	kind, ok := model.ParseKind(kindName)
	if !ok {
		return fmt.Errorf("unknown kind %q", kindName)
	}

	dec := json.NewDecoder(in)
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("reading record: %w", err)
	}

	asm, cleanup, err := newAssembler(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	var res *assemble.Assembled
	if save {
		res, err = asm.Save(ctx, kind, 0, raw)
	} else {
		res, err = asm.Assemble(ctx, kind, raw)
	}
	if err != nil {
		var verr *assemble.ValidationError
		if errors.As(err, &verr) {
			writeJSON(out, verr)
		}
		return err
	}

	result := map[string]any{
		"kind":                res.Kind,
		"record":              res.Record.MarshalMap(),
		"createdSideEntities": res.CreatedSideEntities,
	}
	if res.Item != nil {
		result["item"] = res.Item
	}
	if len(res.Notices) > 0 {
		result["notices"] = res.Notices
	}
	if res.Entity != nil {
		result["saved"] = res.Entity.Map()
	}
	return writeJSON(out, result)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
