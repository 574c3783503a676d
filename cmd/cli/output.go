package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/temirov/manahg/internal/collection"
	"github.com/temirov/manahg/internal/hgrepo"
	"github.com/temirov/manahg/internal/repository"
	"github.com/temirov/manahg/internal/utils/flags"
)

const (
	tableMinimumWidthConstant         = 0
	tableTabWidthConstant             = 4
	tablePaddingConstant              = 2
	tablePaddingCharacterConstant     = ' '
	tableCellSeparatorConstant        = "\t"
	jsonIndentConstant                = "  "
	yamlIndentConstant                = 2
	branchNameHeaderConstant          = "BRANCH"
	branchCountHeaderConstant         = "REPOSITORIES"
	themeIndexHeaderConstant          = "THEME"
	themeNameHeaderConstant           = "NAME"
	showFullPathHeaderConstant        = "FULL PATH"
	unsupportedOutputTemplateConstant = "unsupported output format %q"
)

type repositoriesDocument struct {
	Repositories []repository.Record `json:"repositories" yaml:"repositories"`
}

type branchesDocument struct {
	Branches []hgrepo.BranchCount `json:"branches" yaml:"branches"`
}

type preferencesDocument struct {
	ThemeIndex   int    `json:"theme_idx" yaml:"theme_idx"`
	ThemeName    string `json:"theme" yaml:"theme"`
	ShowFullPath bool   `json:"show_full_path" yaml:"show_full_path"`
}

// documentRenderer writes one document in the selected output format.
type documentRenderer struct {
	format string
	writer io.Writer
}

func newDocumentRenderer(format string, writer io.Writer) documentRenderer {
	return documentRenderer{format: strings.ToLower(strings.TrimSpace(format)), writer: writer}
}

func (renderer documentRenderer) renderRepositories(records []repository.Record) error {
	if records == nil {
		records = []repository.Record{}
	}
	header := make([]string, 0, collection.ColumnCount)
	for columnIndex := range collection.ColumnCount {
		header = append(header, strings.ToUpper(collection.Column(columnIndex).Title()))
	}

	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{record.Path, record.CurrentBranch, record.Revision, record.ModifiedLabel(), record.CommitType, record.LastStatus})
	}
	return renderer.render(repositoriesDocument{Repositories: records}, header, rows)
}

func (renderer documentRenderer) renderBranches(counts []hgrepo.BranchCount) error {
	if counts == nil {
		counts = []hgrepo.BranchCount{}
	}
	rows := make([][]string, 0, len(counts))
	for _, count := range counts {
		rows = append(rows, []string{count.Name, strconv.Itoa(count.Count)})
	}
	return renderer.render(branchesDocument{Branches: counts}, []string{branchNameHeaderConstant, branchCountHeaderConstant}, rows)
}

func (renderer documentRenderer) renderPreferences(document preferencesDocument) error {
	rows := [][]string{{strconv.Itoa(document.ThemeIndex), document.ThemeName, strconv.FormatBool(document.ShowFullPath)}}
	return renderer.render(document, []string{themeIndexHeaderConstant, themeNameHeaderConstant, showFullPathHeaderConstant}, rows)
}

func (renderer documentRenderer) render(document any, header []string, rows [][]string) error {
	output := renderer.writer
	switch renderer.format {
	case flags.OutputFormatJSON:
		encoder := json.NewEncoder(output)
		encoder.SetIndent("", jsonIndentConstant)
		return encoder.Encode(document)
	case flags.OutputFormatYAML:
		encoder := yaml.NewEncoder(output)
		encoder.SetIndent(yamlIndentConstant)
		if encodeError := encoder.Encode(document); encodeError != nil {
			return encodeError
		}
		return encoder.Close()
	case flags.OutputFormatTable, "":
		tableWriter := tabwriter.NewWriter(output, tableMinimumWidthConstant, tableTabWidthConstant, tablePaddingConstant, tablePaddingCharacterConstant, 0)
		if _, writeError := fmt.Fprintln(tableWriter, strings.Join(header, tableCellSeparatorConstant)); writeError != nil {
			return writeError
		}
		for _, row := range rows {
			if _, writeError := fmt.Fprintln(tableWriter, strings.Join(row, tableCellSeparatorConstant)); writeError != nil {
				return writeError
			}
		}
		return tableWriter.Flush()
	default:
		return fmt.Errorf(unsupportedOutputTemplateConstant, renderer.format)
	}
}
