// Command promptctl is the command-line front end for a promptvault server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"promptvault/internal/api"
	"promptvault/internal/apperr"
	"promptvault/internal/client"
	"promptvault/internal/ocr"
	"promptvault/internal/prompt"
)

const usage = `usage: promptctl <command> [flags]

commands:
  register   create an account
  login      sign in and store the session token
  logout     forget the session token
  list       list prompts (--q, --tag, --tool filter locally)
  add        capture a prompt (--content, --file or --image)
  edit       change fields of a prompt
  rm         delete a prompt
  export     write the library as JSON
  ocr        print the text recognized in an image
  langs      list OCR languages
`

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: true})
	zerolog.SetGlobalLevel(zerolog.WarnLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout))
}

type app struct {
	out     io.Writer
	path    string
	sess    session
	api     *client.Client
	ctl     *client.Controller
	ocr     *ocr.Adapter
	command string
}

func run(ctx context.Context, args []string, out io.Writer) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "help" {
		fmt.Fprint(out, usage)
		return 2
	}

	path, err := sessionPath()
	if err != nil {
		log.Error().Err(err).Msg("Cannot locate config")
		return 1
	}
	sess, err := loadSession(path)
	if err != nil {
		log.Error().Err(err).Msg("Cannot read config")
		return 1
	}
	if s := os.Getenv("PROMPTVAULT_SERVER"); s != "" {
		sess.Server = s
	}

	a := &app{out: out, path: path, sess: sess, command: strings.Join(args, " ")}
	a.api = client.New(sess.Server, sess.Token)
	a.ctl = client.NewController(a.api)

	cmds := map[string]func(context.Context, []string) error{
		"register": a.register,
		"login":    a.login,
		"logout":   a.logout,
		"list":     a.list,
		"add":      a.add,
		"edit":     a.edit,
		"rm":       a.remove,
		"export":   a.export,
		"ocr":      a.recognize,
		"langs":    a.langs,
	}
	cmd, ok := cmds[args[0]]
	if !ok {
		fmt.Fprintf(out, "unknown command %q\n\n%s", args[0], usage)
		return 2
	}

	b := client.Boundary{OnAuthExpired: a.authExpired}
	if err := b.Run(a.command, func() error { return cmd(ctx, args[1:]) }); err != nil {
		if errors.Is(err, client.ErrAuthExpired) {
			return 1
		}
		if errors.Is(err, flag.ErrHelp) {
			return 2
		}
		fmt.Fprintln(out, "error:", err)
		return 1
	}
	return 0
}

// authExpired remembers what the user was doing and sends them to login.
func (a *app) authExpired(returnTo string) {
	a.sess.Token = ""
	a.sess.Resume = returnTo
	if err := a.sess.save(a.path); err != nil {
		log.Warn().Err(err).Msg("Failed to save config")
	}
	fmt.Fprintln(a.out, "Session expired or missing. Sign in with: promptctl login --email <email>")
}

func (a *app) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.out)
	return fs
}

func password(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return os.Getenv("PROMPTVAULT_PASSWORD")
}

func (a *app) register(ctx context.Context, args []string) error {
	fs := a.flags("register")
	email := fs.String("email", "", "account email")
	pass := fs.String("password", "", "password (or PROMPTVAULT_PASSWORD)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	u, err := a.api.Register(ctx, *email, password(*pass))
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Registered %s. Sign in with: promptctl login --email %s\n", u.Email, u.Email)
	return nil
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := a.flags("login")
	email := fs.String("email", a.sess.Email, "account email")
	pass := fs.String("password", "", "password (or PROMPTVAULT_PASSWORD)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	u, err := a.api.Login(ctx, *email, password(*pass))
	if err != nil {
		return err
	}

	resume := a.sess.Resume
	a.sess.Email = u.Email
	a.sess.Token = a.api.Token()
	a.sess.Resume = ""
	if err := a.sess.save(a.path); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Signed in as %s\n", u.Email)
	if resume != "" {
		fmt.Fprintf(a.out, "Continue with: promptctl %s\n", resume)
	}
	return nil
}

func (a *app) logout(_ context.Context, _ []string) error {
	a.sess.Token = ""
	return a.sess.save(a.path)
}

func (a *app) list(ctx context.Context, args []string) error {
	fs := a.flags("list")
	q := fs.String("q", "", "search text")
	tag := fs.String("tag", "", "only prompts with this tag")
	tool := fs.String("tool", "", "only prompts for this AI tool")
	asJSON := fs.Bool("json", false, "print JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := a.ctl.Refresh(ctx); err != nil {
		return err
	}
	rows := a.ctl.Filter(prompt.Filter{Text: *q, Tag: *tag, AITool: *tool})

	if *asJSON {
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(api.FromPrompts(rows))
	}
	if len(rows) == 0 {
		if len(a.ctl.Prompts()) == 0 {
			fmt.Fprintln(a.out, "No prompts yet.")
		} else {
			fmt.Fprintln(a.out, "No prompts match your search.")
		}
		return nil
	}
	printPrompts(a.out, rows)
	return nil
}

func printPrompts(out io.Writer, rows []prompt.Prompt) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tTAGS\tTOOL\tUPDATED")
	for _, p := range rows {
		tool := ""
		if p.AITool != nil {
			tool = *p.AITool
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			p.ID, p.Title, strings.Join(p.Tags, ","), tool, p.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}
	_ = tw.Flush()
}

type captureFlags struct {
	content, file, title, context, description string
	tags, tool, useCase, image, lang             string
	rating                                       int
}

func (c *captureFlags) bind(fs *flag.FlagSet) {
	fs.StringVar(&c.content, "content", "", "prompt text")
	fs.StringVar(&c.file, "file", "", "read prompt text from a markdown or text file")
	fs.StringVar(&c.title, "title", "", "short title (defaults to the start of the content)")
	fs.StringVar(&c.context, "context", "", "when or where the prompt was used")
	fs.StringVar(&c.description, "description", "", "notes")
	fs.StringVar(&c.tags, "tags", "", "comma or space separated tags")
	fs.StringVar(&c.tool, "tool", "", "AI tool (Cursor, ChatGPT, Claude, Copilot, Gemini, Other)")
	fs.StringVar(&c.useCase, "use-case", "", "what the prompt achieved")
	fs.IntVar(&c.rating, "rating", 0, "effectiveness 1-5")
	fs.StringVar(&c.image, "image", "", "extract prompt text from this image")
	fs.StringVar(&c.lang, "lang", ocr.DefaultLanguage, "OCR language code")
}

// appendText joins captured pieces with a blank line like the capture form.
func appendText(cur, next string) string {
	next = strings.TrimSpace(next)
	if next == "" {
		return cur
	}
	if cur == "" {
		return next
	}
	return cur + "\n\n" + next
}

func (a *app) add(ctx context.Context, args []string) error {
	fs := a.flags("add")
	var c captureFlags
	c.bind(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	form := client.Form{
		Content:     c.content,
		Title:       c.title,
		Context:     c.context,
		Description: c.description,
		Tags:        c.tags,
		AITool:      c.tool,
		UseCase:     c.useCase,
		Rating:      c.rating,
	}
	if c.file != "" {
		b, err := os.ReadFile(c.file)
		if err != nil {
			return err
		}
		form.Content = appendText(form.Content, string(b))
	}
	if c.image != "" {
		text, err := a.imageText(ctx, c.image, c.lang)
		if err != nil {
			return err
		}
		if text != "" {
			form.Content = appendText(form.Content, text)
			form.FromImage = true
		}
	}

	p, err := a.ctl.Save(ctx, form)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Saved %s (%s)\n", p.ID, p.Title)
	return nil
}

func (a *app) edit(ctx context.Context, args []string) error {
	fs := a.flags("edit")
	var c captureFlags
	c.bind(fs)
	clearRating := fs.Bool("clear-rating", false, "remove the rating")
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return fmt.Errorf("%w: usage: promptctl edit <id> [flags]", apperr.ErrValidation)
	}
	id := args[0]
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	patch, err := buildPatch(fs, c, *clearRating)
	if err != nil {
		return err
	}
	if c.image != "" {
		text, err := a.imageText(ctx, c.image, c.lang)
		if err != nil {
			return err
		}
		if text != "" {
			fromImage := true
			patch.Content = &text
			patch.FromImage = &fromImage
		}
	}
	if patch == (api.Patch{}) {
		return fmt.Errorf("%w: nothing to change", apperr.ErrValidation)
	}
	p, err := a.api.UpdatePrompt(ctx, id, patch)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Updated %s (%s)\n", p.ID, p.Title)
	return nil
}

func (a *app) remove(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: usage: promptctl rm <id>", apperr.ErrValidation)
	}
	if err := a.ctl.Remove(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Deleted", args[0])
	return nil
}

func (a *app) export(ctx context.Context, args []string) error {
	fs := a.flags("export")
	outPath := fs.String("out", "", "output file (default prompt-library-YYYY-MM-DD.json, - for stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	exp, err := a.api.Export(ctx)
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(exp, "", "  ")
	if err != nil {
		return err
	}

	name := *outPath
	if name == "-" {
		_, err := a.out.Write(append(b, '\n'))
		return err
	}
	if name == "" {
		name = prompt.ExportFilename(exp.ExportedAt)
	}
	if err := os.WriteFile(name, b, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Exported %d prompts to %s\n", exp.Count, name)
	return nil
}

func (a *app) recognize(ctx context.Context, args []string) error {
	fs := a.flags("ocr")
	image := fs.String("image", "", "image file")
	lang := fs.String("lang", ocr.DefaultLanguage, "language code")
	if err := fs.Parse(args); err != nil {
		return err
	}
	text, err := a.imageText(ctx, *image, *lang)
	if err != nil {
		return err
	}
	if text != "" {
		fmt.Fprintln(a.out, text)
	}
	return nil
}

func (a *app) langs(_ context.Context, _ []string) error {
	for _, l := range ocr.Languages {
		fmt.Fprintf(a.out, "%-8s %s\n", l.Code, l.Label)
	}
	return nil
}

// imageText is extract plus the notice every command prints when the image
// holds no text.
func (a *app) imageText(ctx context.Context, path, lang string) (string, error) {
	text, err := a.extract(ctx, path, lang)
	if err != nil {
		return "", err
	}
	if text == "" {
		fmt.Fprintln(a.out, "No text was found in the image.")
	}
	return text, nil
}

// extract runs OCR with a progress line on stderr. Ctrl-C cancels the job.
func (a *app) extract(ctx context.Context, path, lang string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("%w: --image is required", apperr.ErrValidation)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if a.ocr == nil {
		engine, err := ocr.NewEngine()
		if err != nil {
			return "", err
		}
		a.ocr = ocr.NewAdapter(engine)
	}

	job, err := a.ocr.Extract(ctx, b, lang)
	if err != nil {
		return "", err
	}
	// gosseract cannot abort a running recognition, so Wait may still block
	// until it finishes after a Ctrl-C.
	stop := context.AfterFunc(ctx, job.Cancel)
	defer stop()

	for p := range job.Updates() {
		fmt.Fprintf(os.Stderr, "\rExtracting… %3d%%", p)
	}
	fmt.Fprintln(os.Stderr)

	res, err := job.Wait()
	if err != nil {
		return "", err
	}
	return res.Text, nil
}
