package cmd

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/iksnae/mirova/internal"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"
)

const shellHistoryFile = "shell_history"

var shellCommands = []string{
	"chat", "image", "code", "stt",
	"new", "close", "switch", "list", "rename", "show",
	"send", "edit", "attach", "detach",
	"prompt", "style", "ratio", "lang", "generate", "save",
	"transcribe", "speak",
	"history", "restore", "theme", "whoami", "help", "quit", "exit",
}

var audioMimeTypes = map[string]string{
	".mp3":  "audio/mp3",
	".wav":  "audio/wav",
	".webm": "audio/webm",
	".ogg":  "audio/ogg",
	".m4a":  "audio/mp4",
	".aac":  "audio/aac",
	".flac": "audio/flac",
}

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Interactive workspace with chat, image, code and speech-to-text tabs",
	Long: `Open an interactive session over the workspace.

Type "help" inside the shell for the list of commands. In chat mode any line
that is not a command is sent as a message.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		s := newShell(a, cmd.OutOrStdout())
		if s.features == nil {
			internal.PrintWarning(fmt.Sprintf("Generation is disabled: %v", s.featuresErr))
		}
		return s.run(cmd.Context())
	},
}

// shell holds the interactive state on top of an opened app
type shell struct {
	app         *app
	features    *internal.Features
	featuresErr error
	out         io.Writer
	mode        internal.Feature

	// images attached to the next chat message
	pending []string
}

func newShell(a *app, out io.Writer) *shell {
	s := &shell{app: a, out: out, mode: internal.FeatureChat}
	s.features, s.featuresErr = a.features()
	return s
}

func (s *shell) run(ctx context.Context) error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	line.SetCompleter(completeCommand)

	historyPath := filepath.Join(s.app.paths.DataDir, shellHistoryFile)
	if f, err := os.Open(historyPath); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}

	fmt.Fprintf(s.out, "%s %s\n", internal.Accent("MIROVA"), internal.Muted("type help for commands, quit to leave"))
	for {
		input, err := line.Prompt(s.prompt())
		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		if strings.TrimSpace(input) == "" {
			continue
		}
		line.AppendHistory(input)

		quit, err := s.execInterruptible(ctx, input)
		if err != nil {
			internal.PrintError(err.Error())
		}
		if quit {
			break
		}
	}

	if f, err := os.Create(historyPath); err == nil {
		_, _ = line.WriteHistory(f)
		f.Close()
	} else {
		internal.LogDebug("could not save shell history: %v", err)
	}
	return nil
}

// execInterruptible runs one line; Ctrl-C cancels a request in flight
func (s *shell) execInterruptible(ctx context.Context, input string) (bool, error) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	return s.exec(ctx, input)
}

func completeCommand(line string) []string {
	var out []string
	for _, c := range shellCommands {
		if strings.HasPrefix(c, strings.ToLower(line)) {
			out = append(out, c)
		}
	}
	return out
}

func (s *shell) prompt() string {
	ws := s.app.ws
	label := "stt"
	switch s.mode {
	case internal.FeatureChat:
		label = "chat:" + ws.Chat.Active().Name
	case internal.FeatureImage:
		label = "image:" + ws.Image.Active().Name
	case internal.FeatureCoder:
		label = "code:" + ws.Coder.Active().Name
	}
	return fmt.Sprintf("mirova[%s]> ", label)
}

// exec runs one shell line and reports whether the shell should exit
func (s *shell) exec(ctx context.Context, input string) (bool, error) {
	input = strings.TrimSpace(input)
	name, rest, _ := strings.Cut(input, " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(name) {
	case "":
		return false, nil
	case "quit", "exit":
		return true, nil
	case "help":
		s.help()
	case "chat", "image", "code", "stt":
		feature, _ := internal.ParseFeature(strings.ToLower(name))
		s.mode = feature
		if rest == "" {
			return false, s.show()
		}
		sub, arg, _ := strings.Cut(rest, " ")
		return false, s.tabCommand(sub, strings.TrimSpace(arg))
	case "new", "close", "switch", "list", "rename":
		return false, s.tabCommand(name, rest)
	case "show":
		return false, s.show()
	case "send":
		return false, s.send(ctx, rest)
	case "edit":
		return false, s.edit(ctx, rest)
	case "attach":
		return false, s.attach(rest)
	case "detach":
		return false, s.detach(rest)
	case "prompt":
		return false, s.setPrompt(rest)
	case "style":
		return false, s.setStyle(rest)
	case "ratio":
		return false, s.setRatio(rest)
	case "lang":
		return false, s.setLanguage(rest)
	case "generate":
		return false, s.generate(ctx)
	case "save":
		return false, s.save(rest)
	case "transcribe":
		return false, s.transcribe(ctx, strings.Fields(rest))
	case "speak":
		return false, s.setSpeak(rest)
	case "history":
		items := s.app.ws.History.Items()
		displayHistory(s.out, items, len(items), time.Now())
	case "restore":
		return false, s.restore(rest)
	case "theme":
		return false, s.theme(ctx, rest)
	case "whoami":
		if user, ok := s.app.ws.Auth.Current(); ok {
			fmt.Fprintf(s.out, "%s <%s>\n", user.DisplayName(), user.Email)
		} else {
			fmt.Fprintln(s.out, "anonymous")
		}
	default:
		if s.mode == internal.FeatureChat {
			return false, s.send(ctx, input)
		}
		return false, fmt.Errorf("unknown command %q (type help)", name)
	}
	return false, nil
}

func (s *shell) help() {
	fmt.Fprintln(s.out, `Modes:    chat | image | code | stt   (optionally followed by a tab command)
Tabs:     new | close [n] | switch <n> | list | rename <name> | show
Chat:     send <text> (or just type) | edit <n> <text> | attach <file> | speak on|off
Image:    prompt <text> | style <name> | ratio <w:h> | attach <file> | detach <n> | generate | save <file>
Code:     prompt <text> | lang <language> | generate
STT:      lang <language> | transcribe <file>...
General:  history | restore <id> | theme [light|dark|toggle] | whoami | quit`)
}

func (s *shell) requireFeatures() error {
	if s.features == nil {
		return fmt.Errorf("generation unavailable: %w", s.featuresErr)
	}
	return nil
}

// tabCommand applies a tab operation to the current mode's store
func (s *shell) tabCommand(sub, arg string) error {
	ws := s.app.ws
	switch s.mode {
	case internal.FeatureChat:
		return runTabCommand(s.out, ws.Chat, sub, arg, func(c *internal.ChatSession, n string) { c.Name = n })
	case internal.FeatureImage:
		return runTabCommand(s.out, ws.Image, sub, arg, func(c *internal.ImageSession, n string) { c.Name = n })
	case internal.FeatureCoder:
		return runTabCommand(s.out, ws.Coder, sub, arg, func(c *internal.CoderSession, n string) { c.Name = n })
	}
	return errors.New("speech-to-text has no tabs")
}

func runTabCommand[T internal.Tab[T]](out io.Writer, m *internal.TabManager[T], sub, arg string, rename func(*T, string)) error {
	switch strings.ToLower(sub) {
	case "new":
		tab := m.Add(nil)
		fmt.Fprintf(out, "Opened %s\n", tab.TabName())
	case "close":
		id := m.ActiveID()
		if arg != "" {
			var err error
			if id, err = resolveTab(m, arg); err != nil {
				return err
			}
		}
		m.Close(id)
		fmt.Fprintf(out, "Active: %s\n", m.Active().TabName())
	case "switch":
		id, err := resolveTab(m, arg)
		if err != nil {
			return err
		}
		m.SwitchTo(id)
		fmt.Fprintf(out, "Active: %s\n", m.Active().TabName())
	case "list", "":
		listTabs(out, m)
	case "rename":
		if arg == "" {
			return errors.New("rename needs a name")
		}
		m.Update(m.ActiveID(), func(t *T) { rename(t, arg) })
	default:
		return fmt.Errorf("unknown tab command %q", sub)
	}
	return nil
}

// resolveTab accepts a 1-based position or a tab id
func resolveTab[T internal.Tab[T]](m *internal.TabManager[T], ref string) (string, error) {
	tabs := m.Tabs()
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(tabs) {
			return "", fmt.Errorf("no tab %d (there are %d)", n, len(tabs))
		}
		return tabs[n-1].TabID(), nil
	}
	if _, ok := m.Get(ref); ok {
		return ref, nil
	}
	return "", fmt.Errorf("no tab %q", ref)
}

func listTabs[T internal.Tab[T]](out io.Writer, m *internal.TabManager[T]) {
	active := m.ActiveID()
	for i, tab := range m.Tabs() {
		marker := " "
		if tab.TabID() == active {
			marker = "*"
		}
		fmt.Fprintf(out, "%s %d. %s %s\n", marker, i+1, tab.TabName(), idStyle.Render(shortID(tab.TabID())))
	}
}

// show prints the active session of the current mode
func (s *shell) show() error {
	ws := s.app.ws
	theme := ws.Theme.Theme()
	switch s.mode {
	case internal.FeatureChat:
		chat := ws.Chat.Active()
		fmt.Fprintln(s.out, titleStyle.Render(chat.Name))
		for i, msg := range chat.Messages {
			displayMessage(s.out, i+1, len(chat.Messages), msg, theme)
		}
		if len(s.pending) > 0 {
			fmt.Fprintln(s.out, dateStyle.Render(fmt.Sprintf("%d image(s) attached to the next message", len(s.pending))))
		}
	case internal.FeatureImage:
		img := ws.Image.Active()
		fmt.Fprintln(s.out, titleStyle.Render(img.Name))
		fmt.Fprintf(s.out, "Prompt:     %s\nStyle:      %s\nResolution: %s\nSources:    %d image(s)\n",
			img.Prompt, img.Style, img.Resolution, len(img.SourceImages))
		if img.GeneratedImage != "" {
			fmt.Fprintf(s.out, "Image:      %d bytes (save <file> to write it)\n", base64.StdEncoding.DecodedLen(len(img.GeneratedImage)))
		}
	case internal.FeatureCoder:
		code := ws.Coder.Active()
		fmt.Fprintln(s.out, titleStyle.Render(code.Name))
		fmt.Fprintf(s.out, "Prompt:   %s\nLanguage: %s\n", code.Prompt, code.Language)
		if code.Result != "" {
			fmt.Fprintln(s.out, renderMarkdown(code.Result, theme))
		}
	case internal.FeatureSTT:
		fmt.Fprintf(s.out, "Language: %s\n", ws.STT.Language())
		if text := ws.STT.Transcription(); text != "" {
			fmt.Fprintln(s.out, wrapText(text, 80))
		}
	}
	return nil
}

func (s *shell) send(ctx context.Context, text string) error {
	if err := s.requireFeatures(); err != nil {
		return err
	}
	s.mode = internal.FeatureChat
	images := s.pending
	var chat internal.ChatSession
	err := internal.ShowProgress(ctx, "Thinking...", func() error {
		var err error
		chat, err = s.features.SendChat(ctx, text, images)
		return err
	})
	if errors.Is(err, internal.ErrEmptyPrompt) {
		return errors.New("nothing to send")
	}
	s.pending = nil
	s.printReply(chat)
	return err
}

func (s *shell) edit(ctx context.Context, arg string) error {
	if err := s.requireFeatures(); err != nil {
		return err
	}
	ref, text, _ := strings.Cut(arg, " ")
	n, err := strconv.Atoi(ref)
	if err != nil {
		return errors.New("usage: edit <message number> <text>")
	}
	messages := s.app.ws.Chat.Active().Messages
	if n < 1 || n > len(messages) {
		return fmt.Errorf("no message %d", n)
	}

	var chat internal.ChatSession
	err = internal.ShowProgress(ctx, "Thinking...", func() error {
		var err error
		chat, err = s.features.EditMessage(ctx, messages[n-1].ID, strings.TrimSpace(text))
		return err
	})
	if errors.Is(err, internal.ErrNotFound) {
		return err
	}
	s.printReply(chat)
	return err
}

func (s *shell) printReply(chat internal.ChatSession) {
	if len(chat.Messages) == 0 {
		return
	}
	last := chat.Messages[len(chat.Messages)-1]
	if last.Role != internal.RoleModel {
		return
	}
	displayMessage(s.out, len(chat.Messages), len(chat.Messages), last, s.app.ws.Theme.Theme())
	if last.Audio != "" {
		fmt.Fprintln(s.out, dateStyle.Render("(spoken reply attached)"))
	}
}

func (s *shell) attach(path string) error {
	if path == "" {
		return errors.New("usage: attach <file>")
	}
	img, err := readImage(path)
	if err != nil {
		return err
	}

	switch s.mode {
	case internal.FeatureChat:
		if len(s.pending) >= internal.MaxImages {
			return internal.ErrTooManyImages
		}
		s.pending = append(s.pending, img.Data)
		fmt.Fprintf(s.out, "Attached %s to the next message\n", filepath.Base(path))
	case internal.FeatureImage:
		if err := s.requireFeatures(); err != nil {
			return err
		}
		if err := s.features.AttachSourceImages(img); err != nil {
			return err
		}
		fmt.Fprintf(s.out, "Added source image %d\n", len(s.app.ws.Image.Active().SourceImages))
	default:
		return errors.New("attach works in chat and image modes")
	}
	return nil
}

func (s *shell) detach(arg string) error {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return errors.New("usage: detach <n>")
	}
	switch s.mode {
	case internal.FeatureChat:
		if n < 1 || n > len(s.pending) {
			return fmt.Errorf("no attachment %d", n)
		}
		s.pending = append(s.pending[:n-1:n-1], s.pending[n:]...)
	case internal.FeatureImage:
		if err := s.requireFeatures(); err != nil {
			return err
		}
		if !s.features.RemoveSourceImage(n - 1) {
			return fmt.Errorf("no source image %d", n)
		}
	default:
		return errors.New("detach works in chat and image modes")
	}
	return nil
}

func (s *shell) setPrompt(text string) error {
	ws := s.app.ws
	switch s.mode {
	case internal.FeatureImage:
		ws.Image.Update(ws.Image.ActiveID(), func(img *internal.ImageSession) { img.Prompt = text })
	case internal.FeatureCoder:
		ws.Coder.Update(ws.Coder.ActiveID(), func(c *internal.CoderSession) { c.Prompt = text })
	default:
		return errors.New("prompt works in image and code modes")
	}
	return nil
}

func (s *shell) setStyle(name string) error {
	if s.mode != internal.FeatureImage {
		return errors.New("style works in image mode")
	}
	style, ok := matchOption(internal.ImageStyles, name)
	if !ok {
		return fmt.Errorf("unknown style %q (choose from %s)", name, strings.Join(internal.ImageStyles, ", "))
	}
	ws := s.app.ws
	ws.Image.Update(ws.Image.ActiveID(), func(img *internal.ImageSession) { img.Style = style })
	return nil
}

func (s *shell) setRatio(value string) error {
	if s.mode != internal.FeatureImage {
		return errors.New("ratio works in image mode")
	}
	ratio, err := internal.ParseResolution(value)
	if err != nil {
		return err
	}
	ws := s.app.ws
	ws.Image.Update(ws.Image.ActiveID(), func(img *internal.ImageSession) { img.Resolution = ratio })
	return nil
}

func (s *shell) setLanguage(value string) error {
	if value == "" {
		return errors.New("usage: lang <language>")
	}
	ws := s.app.ws
	switch s.mode {
	case internal.FeatureCoder:
		ws.Coder.Update(ws.Coder.ActiveID(), func(c *internal.CoderSession) { c.Language = value })
	case internal.FeatureSTT:
		lang, ok := matchOption(internal.SttLanguages, value)
		if !ok {
			return fmt.Errorf("unsupported language %q (choose from %s)", value, strings.Join(internal.SttLanguages, ", "))
		}
		ws.STT.SetLanguage(lang)
	default:
		return errors.New("lang works in code and stt modes")
	}
	return nil
}

func (s *shell) setSpeak(value string) error {
	if err := s.requireFeatures(); err != nil {
		return err
	}
	switch strings.ToLower(value) {
	case "on":
		s.features.Speak = true
	case "off":
		s.features.Speak = false
	default:
		return errors.New("usage: speak on|off")
	}
	return nil
}

func (s *shell) generate(ctx context.Context) error {
	if err := s.requireFeatures(); err != nil {
		return err
	}
	theme := s.app.ws.Theme.Theme()
	switch s.mode {
	case internal.FeatureImage:
		var img internal.ImageSession
		err := internal.ShowProgress(ctx, "Generating image...", func() error {
			var err error
			img, err = s.features.GenerateImage(ctx)
			return err
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "Image ready: %d bytes (save <file> to write it)\n", base64.StdEncoding.DecodedLen(len(img.GeneratedImage)))
	case internal.FeatureCoder:
		var code internal.CoderSession
		err := internal.ShowProgress(ctx, "Generating code...", func() error {
			var err error
			code, err = s.features.GenerateCode(ctx)
			return err
		})
		if code.Result != "" {
			fmt.Fprintln(s.out, renderMarkdown(code.Result, theme))
		}
		return err
	default:
		return errors.New("generate works in image and code modes")
	}
	return nil
}

func (s *shell) save(path string) error {
	if s.mode != internal.FeatureImage {
		return errors.New("save works in image mode")
	}
	if path == "" {
		return errors.New("usage: save <file>")
	}
	img := s.app.ws.Image.Active()
	return saveImage(internal.HistoryItem{ID: img.ID, Feature: internal.FeatureImage, Payload: img}, path)
}

func (s *shell) transcribe(ctx context.Context, files []string) error {
	if err := s.requireFeatures(); err != nil {
		return err
	}
	if len(files) == 0 {
		return errors.New("usage: transcribe <file>...")
	}
	clips := make([]internal.AudioClip, 0, len(files))
	names := make([]string, 0, len(files))
	for _, path := range files {
		clip, err := readAudio(path)
		if err != nil {
			return err
		}
		clips = append(clips, clip)
		names = append(names, filepath.Base(path))
	}

	s.mode = internal.FeatureSTT
	_, err := s.features.Transcribe(ctx, clips, strings.Join(names, ", "), func(chunk string) {
		fmt.Fprint(s.out, chunk)
	})
	fmt.Fprintln(s.out)
	return err
}

func (s *shell) restore(ref string) error {
	if ref == "" {
		return errors.New("usage: restore <id>")
	}
	item, err := findItem(s.app.ws.History.Items(), ref)
	if err != nil {
		return err
	}
	feature, err := s.app.ws.Restore(item)
	if err != nil {
		return err
	}
	s.mode = feature
	return s.show()
}

func (s *shell) theme(ctx context.Context, arg string) error {
	if arg == "" {
		fmt.Fprintln(s.out, s.app.ws.Theme.Theme())
		return nil
	}
	t, err := setTheme(ctx, s.app.ws.Theme, arg)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Theme set to %s\n", t)
	return nil
}

// matchOption finds value in options ignoring case
func matchOption(options []string, value string) (string, bool) {
	for _, o := range options {
		if strings.EqualFold(o, value) {
			return o, true
		}
	}
	return "", false
}

func readImage(path string) (internal.SourceImage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return internal.SourceImage{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return internal.SourceImage{}, fmt.Errorf("%s is not an image (%s)", path, mime)
	}
	return internal.SourceImage{Data: base64.StdEncoding.EncodeToString(data), MimeType: mime}, nil
}

func readAudio(path string) (internal.AudioClip, error) {
	mime, ok := audioMimeTypes[strings.ToLower(filepath.Ext(path))]
	if !ok {
		exts := make([]string, 0, len(audioMimeTypes))
		for ext := range audioMimeTypes {
			exts = append(exts, ext)
		}
		sort.Strings(exts)
		return internal.AudioClip{}, fmt.Errorf("unsupported audio file %s (use %s)", path, strings.Join(exts, ", "))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return internal.AudioClip{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return internal.AudioClip{Data: base64.StdEncoding.EncodeToString(data), MimeType: mime}, nil
}

func init() {
	rootCmd.AddCommand(shellCmd)
}
