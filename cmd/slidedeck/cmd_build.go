package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"slidedeck/internal/build"
	"slidedeck/internal/deck"
	"slidedeck/internal/logging"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

var (
	// build flags
	buildOutput   string
	writeMetadata bool
	createSamples bool

	// list flags
	listJSON bool

	// new flags
	slideNumber  int
	slideSection string
	newOutputDir string
	forceNew     bool
)

// buildCmd writes the static navigation page
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Discover slides and write the index.html navigation page",
	Long: `Scans the slides directory for NNN-slug.html and NNN-slug.md files,
renders markdown slides to HTML, and writes index.html with a sidebar,
slide counter, navigation buttons and keyboard shortcuts.

Fails with exit code 2 when no slides are found and 3 when two files share
a slide number.`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

// listCmd prints the discovered deck
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List discovered slides and the section breakdown",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

// newCmd authors a slide from a content fragment
var newCmd = &cobra.Command{
	Use:   "new TITLE CONTENT_FILE",
	Short: "Create a slide document from an HTML content fragment",
	Long: `Wraps the HTML fragment in CONTENT_FILE in the standard slide document
and writes it as NNN-slug.html. Use - to read the fragment from stdin.`,
	Args: cobra.ExactArgs(2),
	RunE: runNew,
}

func init() {
	buildCmd.Flags().StringVarP(&buildOutput, "output", "o", "", "Navigation page path (default <slides-dir>/index.html)")
	buildCmd.Flags().BoolVar(&writeMetadata, "metadata", false, "Also write slides_metadata.json")
	buildCmd.Flags().BoolVar(&createSamples, "create-samples", false, "Write sample slides before building")

	listCmd.Flags().BoolVar(&listJSON, "json", false, "Print deck metadata as JSON")

	newCmd.Flags().IntVarP(&slideNumber, "number", "n", 0, "Slide number")
	newCmd.Flags().StringVarP(&slideSection, "section", "s", "main", "Section: main or appendix")
	newCmd.Flags().StringVarP(&newOutputDir, "output-dir", "d", "", "Directory to write the slide into (default from config)")
	newCmd.Flags().BoolVar(&forceNew, "force", false, "Overwrite an existing slide file")
	_ = newCmd.MarkFlagRequired("number")
}

// runBuild discovers the deck and writes the navigation page
func runBuild(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext(timeout)
	defer cancel()

	out := cmd.OutOrStdout()
	dir := resolveSlidesDir()

	if createSamples {
		paths, err := deck.CreateSamples(dir)
		if err != nil {
			return fmt.Errorf("failed to create samples: %w", err)
		}
		if len(paths) == 0 {
			logging.BootWarn("Sample slides already present in %s", dir)
		}
		fmt.Fprintf(out, "Created %d sample slides in %s\n", len(paths), dir)
	}

	opts := loadOptions()
	res, err := build.Run(ctx, build.Options{
		SlidesDir: dir,
		Title:     opts.Title,
		MainCount: opts.MainCount,
		Output:    firstNonEmpty(buildOutput, settings().Shell.Output),
		Metadata:  writeMetadata || settings().Shell.Metadata,
	})
	if err != nil {
		return err
	}

	d := res.Deck
	mainSlides := d.MainCount()
	fmt.Fprintf(out, "Generated %s\n", res.Index)
	fmt.Fprintf(out, "  Title:        %s\n", d.Title())
	fmt.Fprintf(out, "  Total slides: %d\n", d.Len())
	fmt.Fprintf(out, "  Main:         %d\n", mainSlides)
	fmt.Fprintf(out, "  Appendix:     %d\n", d.Len()-mainSlides)
	if len(res.Rendered) > 0 {
		fmt.Fprintf(out, "  Rendered:     %d markdown slides\n", len(res.Rendered))
	}
	if res.Metadata != "" {
		fmt.Fprintf(out, "  Metadata:     %s\n", res.Metadata)
	}
	return nil
}

// runList prints the deck as a table or as metadata JSON
func runList(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext(timeout)
	defer cancel()

	d, err := loadDeck(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if listJSON {
		return d.EncodeMetadata(out)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("#", "TITLE", "SECTION", "FILE")
	for _, s := range d.Slides() {
		t.Row(s.ID, s.Title, s.Section.Label(), s.Filename)
	}
	fmt.Fprintln(out, d.Title())
	fmt.Fprintln(out, t.String())

	mainSlides := d.MainCount()
	fmt.Fprintf(out, "%d slides: %d main, %d appendix\n", d.Len(), mainSlides, d.Len()-mainSlides)
	return nil
}

// runNew writes a slide document from a content fragment
func runNew(cmd *cobra.Command, args []string) error {
	title, contentFile := args[0], args[1]

	var (
		body []byte
		err  error
	)
	if contentFile == "-" {
		body, err = io.ReadAll(cmd.InOrStdin())
	} else {
		body, err = os.ReadFile(contentFile)
	}
	if err != nil {
		return fmt.Errorf("failed to read content: %w", err)
	}

	section, err := deck.ParseSection(slideSection)
	if err != nil {
		return err
	}

	dir := firstNonEmpty(newOutputDir, resolveSlidesDir())
	path, err := deck.WriteSlide(dir, deck.NewSlide{
		Number:  slideNumber,
		Title:   title,
		Section: section,
		Body:    string(body),
		Force:   forceNew,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created slide %s (%s, %s)\n", deck.FormatID(slideNumber), strconv.Quote(title), path)
	return nil
}
