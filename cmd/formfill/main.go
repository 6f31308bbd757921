package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vstopensource/formfill"
	"github.com/vstopensource/formfill/pkg/model"
	"github.com/vstopensource/formfill/pkg/openapi"
	"github.com/vstopensource/formfill/pkg/profile"
	"github.com/vstopensource/formfill/pkg/render"
	"github.com/vstopensource/formfill/pkg/renderers/tui"
	"github.com/vstopensource/formfill/pkg/schema"
	"github.com/vstopensource/formfill/pkg/server"
	"github.com/vstopensource/formfill/pkg/store"
	"github.com/vstopensource/formfill/pkg/store/mongostore"
	"github.com/vstopensource/formfill/pkg/submission"
	"github.com/vstopensource/formfill/pkg/validation"
	"github.com/vstopensource/formfill/pkg/visibility"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx := context.Background()

	var err error
	switch os.Args[1] {
	case "render":
		err = runRender(ctx, os.Args[2:])
	case "fill":
		err = runFill(ctx, os.Args[2:])
	case "validate":
		err = runValidate(os.Args[2:])
	case "import":
		err = runImport(ctx, os.Args[2:])
	case "serve":
		err = runServe(ctx, os.Args[2:])
	case "-h", "-help", "--help", "help":
		usage()
		return
	default:
		usage()
		log.Fatalf("unknown command %q", os.Args[1])
	}
	if err != nil {
		log.Fatalf("%s: %v", os.Args[1], err)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: %s <command> [flags]

Commands:
  render    render a form schema to HTML
  fill      fill a form interactively in the terminal
  validate  check an answer file against a form schema
  import    bootstrap a form schema from an OpenAPI operation
  serve     run the HTTP form server

Run "%s <command> -h" for the flags of each command.
`, filepath.Base(os.Args[0]), filepath.Base(os.Args[0]))
}

func runRender(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	schemaPath := fs.String("schema", "", "form schema file (json or yaml)")
	valuesPath := fs.String("values", "", "optional answer file (json) to prefill")
	profilePath := fs.String("profile", "", "optional member profile file (json) for auto-fetch")
	rendererName := fs.String("renderer", "vanilla", "renderer to use")
	output := fs.String("output", "", "output file (stdout if empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	s, err := loadSchema(*schemaPath)
	if err != nil {
		return err
	}
	opts := render.Options{}
	if opts.Values, err = loadValues(*valuesPath); err != nil {
		return err
	}
	if opts.Profile, err = loadProfile(*profilePath); err != nil {
		return err
	}

	renderer, err := formfill.NewRegistry().Get(*rendererName)
	if err != nil {
		return err
	}
	out, err := renderer.Render(ctx, s, opts)
	if err != nil {
		return err
	}
	return writeOutput(*output, out)
}

func runFill(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("fill", flag.ExitOnError)
	schemaPath := fs.String("schema", "", "form schema file (json or yaml)")
	profilePath := fs.String("profile", "", "optional member profile file (json) for auto-fetch")
	format := fs.String("format", "json", "output format: json, form or pretty")
	output := fs.String("output", "", "output file (stdout if empty)")
	submit := fs.Bool("submit", false, "submit the answers to the store instead of printing them")
	mongoURI := fs.String("mongo-uri", "", "mongodb connection string (required with -submit)")
	mongoDB := fs.String("mongo-db", "formfill", "mongodb database name")
	uid := fs.String("uid", "", "member uid recorded on the submission (required with -submit)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	s, err := loadSchema(*schemaPath)
	if err != nil {
		return err
	}
	opts := render.Options{}
	if opts.Profile, err = loadProfile(*profilePath); err != nil {
		return err
	}

	serialization := tui.OutputFormat(*format)
	if *submit {
		serialization = tui.OutputFormatJSON
	}
	startedAt := time.Now()

	renderer := tui.New(tui.WithOutputFormat(serialization))
	answers, err := renderer.Render(ctx, s, opts)
	if err != nil {
		if errors.Is(err, tui.ErrAborted) {
			fmt.Fprintln(os.Stderr, "aborted")
			os.Exit(1)
		}
		return err
	}

	if !*submit {
		return writeOutput(*output, answers)
	}

	if *mongoURI == "" || *uid == "" {
		return errors.New("-submit needs -mongo-uri and -uid")
	}
	var values map[string]any
	if err := json.Unmarshal(answers, &values); err != nil {
		return fmt.Errorf("decode answers: %w", err)
	}

	st, disconnect, err := mongostore.Connect(ctx, *mongoURI, *mongoDB)
	if err != nil {
		return err
	}
	defer func() {
		_ = disconnect(context.Background())
	}()

	ident := profile.Identity{UID: *uid, Email: opts.Profile.Email, DisplayName: opts.Profile.Name}
	record, err := submission.New(st).Submit(ctx, s, values, ident, opts.Profile, startedAt)
	if err != nil {
		return err
	}
	fmt.Printf("submitted %s\n", record.ID)
	return nil
}

func runValidate(args []string) error {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	schemaPath := fs.String("schema", "", "form schema file (json or yaml)")
	valuesPath := fs.String("values", "", "answer file (json)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	s, err := loadSchema(*schemaPath)
	if err != nil {
		return err
	}
	values, err := loadValues(*valuesPath)
	if err != nil {
		return err
	}
	if values == nil {
		return errors.New("missing -values")
	}

	visible := visibility.New(s).VisibleSet(values)
	if err := validation.Validate(s, values, visible); err != nil {
		var fieldErr *validation.FieldError
		if errors.As(err, &fieldErr) {
			fmt.Fprintf(os.Stderr, "%s: %s\n", fieldErr.FieldID, fieldErr.Message)
			os.Exit(1)
		}
		return err
	}
	fmt.Println("ok")
	return nil
}

func runImport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	source := fs.String("source", "", "OpenAPI document path or URL")
	operation := fs.String("operation", "", "operation id to import")
	list := fs.Bool("list", false, "list the document's operation ids and exit")
	format := fs.String("format", "yaml", "output format: yaml or json")
	output := fs.String("output", "", "output file (stdout if empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	raw, err := readSource(ctx, *source)
	if err != nil {
		return err
	}
	importer := openapi.New()

	if *list {
		ids, err := importer.Operations(ctx, raw)
		if err != nil {
			return err
		}
		for _, id := range ids {
			fmt.Println(id)
		}
		return nil
	}

	if *operation == "" {
		return errors.New("missing -operation (use -list to see the candidates)")
	}
	draft, err := importer.Import(ctx, raw, *operation)
	if err != nil {
		return err
	}

	var encoded []byte
	switch *format {
	case "json":
		encoded, err = json.MarshalIndent(draft, "", "  ")
	case "yaml":
		encoded, err = yaml.Marshal(draft)
	default:
		return fmt.Errorf("unknown format %q", *format)
	}
	if err != nil {
		return err
	}
	return writeOutput(*output, encoded)
}

func runServe(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("addr", ":8080", "listen address")
	mongoURI := fs.String("mongo-uri", "", "mongodb connection string (in-memory store if empty)")
	mongoDB := fs.String("mongo-db", "formfill", "mongodb database name")
	formsDir := fs.String("forms", "", "directory of schema files seeded into the in-memory store")
	if err := fs.Parse(args); err != nil {
		return err
	}

	secret := os.Getenv("FORMFILL_JWT_SECRET")
	if secret == "" {
		return errors.New("FORMFILL_JWT_SECRET is not set")
	}

	var st store.DocumentStore
	if *mongoURI != "" {
		mongoStore, disconnect, err := mongostore.Connect(ctx, *mongoURI, *mongoDB)
		if err != nil {
			return err
		}
		defer func() {
			_ = disconnect(context.Background())
		}()
		st = mongoStore
	} else {
		mem := store.NewMemory()
		if *formsDir != "" {
			if err := seedForms(ctx, mem, *formsDir); err != nil {
				return err
			}
		}
		st = mem
	}

	srv, err := server.New(st, []byte(secret))
	if err != nil {
		return err
	}
	log.Printf("listening on %s", *addr)
	return srv.Start(*addr)
}

// seedForms loads every schema file in dir into the forms collection, keyed by
// the schema id (file name without extension when the schema carries none).
func seedForms(ctx context.Context, st store.DocumentStore, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		switch ext {
		case ".json", ".yaml", ".yml":
		default:
			continue
		}
		s, err := loadSchema(filepath.Join(dir, entry.Name()))
		if err != nil {
			return err
		}
		if s.ID == "" {
			s.ID = strings.TrimSuffix(entry.Name(), ext)
		}
		doc, err := store.Encode(s)
		if err != nil {
			return err
		}
		if err := st.Set(ctx, store.CollectionForms, s.ID, doc); err != nil {
			return err
		}
		log.Printf("seeded form %q", s.ID)
	}
	return nil
}

func loadSchema(path string) (model.FormSchema, error) {
	if path == "" {
		return model.FormSchema{}, errors.New("missing -schema")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return model.FormSchema{}, err
	}
	return schema.Decode(raw)
}

func loadValues(path string) (map[string]any, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var values map[string]any
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("decode values: %w", err)
	}
	return values, nil
}

func loadProfile(path string) (profile.Profile, error) {
	if path == "" {
		return profile.Profile{}, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return profile.Profile{}, err
	}
	var p profile.Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		return profile.Profile{}, fmt.Errorf("decode profile: %w", err)
	}
	return p, nil
}

func writeOutput(path string, data []byte) error {
	if path == "" {
		if len(data) > 0 && data[len(data)-1] != '\n' {
			data = append(data, '\n')
		}
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "written to %s\n", path)
	return nil
}

func readSource(ctx context.Context, source string) ([]byte, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, errors.New("missing -source")
	}
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return nil, err
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("fetch %s: status %d", source, resp.StatusCode)
		}
		return io.ReadAll(resp.Body)
	}
	return os.ReadFile(source)
}
