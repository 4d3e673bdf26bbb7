// Package excel imports homework tasks in bulk from a spreadsheet, for
// seeding a class's assignments without clicking through the planner UI.
package excel

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/example/hwnotify/internal/database"
	"github.com/example/hwnotify/pkg/models"
)

// ImportConfig defines the import configuration
type ImportConfig struct {
	FilePath      string // Path to the Excel or CSV file
	UserIDColumn  string // Column with the owning user id
	SubjectColumn string // Column with the subject
	TitleColumn   string // Column with the task title
	DueDateColumn string // Column with the due date
	SheetName     string // Name of the sheet to import
	StartRow      int    // The row to start importing from (1-based index)
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		UserIDColumn:  "A",
		SubjectColumn: "B",
		TitleColumn:   "C",
		DueDateColumn: "D",
		SheetName:     "Sheet1",
		StartRow:      2, // By default, start from the second row (skip header)
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed int
	Created        int
	Skipped        int
	Errors         []string
}

// Accepted due date layouts, tried in order.
var dueDateLayouts = []string{"2006-01-02 15:04", "2006-01-02"}

// ImportTasks imports homework tasks from an Excel or CSV file
func ImportTasks(config ImportConfig) (*ImportResult, error) {
	ext := strings.ToLower(filepath.Ext(config.FilePath))
	switch ext {
	case ".xlsx", ".xlsm":
		return importFromExcel(config)
	case ".csv":
		return importFromCSV(config)
	}
	return nil, fmt.Errorf("unsupported file type: %s", ext)
}

func importFromExcel(config ImportConfig) (*ImportResult, error) {
	f, err := excelize.OpenFile(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(config.SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", config.SheetName, err)
	}

	userCol, err := columnIndex(config.UserIDColumn)
	if err != nil {
		return nil, err
	}
	subjectCol, err := columnIndex(config.SubjectColumn)
	if err != nil {
		return nil, err
	}
	titleCol, err := columnIndex(config.TitleColumn)
	if err != nil {
		return nil, err
	}
	dueCol, err := columnIndex(config.DueDateColumn)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{}
	repo := database.NewTaskRepository()

	for i, row := range rows {
		rowNum := i + 1
		if rowNum < config.StartRow {
			continue
		}
		importRow(repo, result, rowNum,
			cell(row, userCol), cell(row, subjectCol), cell(row, titleCol), cell(row, dueCol))
	}
	return result, nil
}

func importFromCSV(config ImportConfig) (*ImportResult, error) {
	file, err := os.Open(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	userCol, err := columnIndex(config.UserIDColumn)
	if err != nil {
		return nil, err
	}
	subjectCol, err := columnIndex(config.SubjectColumn)
	if err != nil {
		return nil, err
	}
	titleCol, err := columnIndex(config.TitleColumn)
	if err != nil {
		return nil, err
	}
	dueCol, err := columnIndex(config.DueDateColumn)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{}
	repo := database.NewTaskRepository()
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	rowNum := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv: %w", err)
		}
		rowNum++
		if rowNum < config.StartRow {
			continue
		}
		importRow(repo, result, rowNum,
			cell(row, userCol), cell(row, subjectCol), cell(row, titleCol), cell(row, dueCol))
	}
	return result, nil
}

// importRow validates one row and inserts the task. Bad rows are counted and
// reported, never fatal.
func importRow(repo *database.TaskRepository, result *ImportResult, rowNum int, userID, subject, title, due string) {
	result.TotalProcessed++

	userID = strings.TrimSpace(userID)
	subject = strings.TrimSpace(subject)
	if userID == "" || subject == "" {
		result.Skipped++
		result.Errors = append(result.Errors, fmt.Sprintf("row %d: user id and subject are required", rowNum))
		return
	}

	dueAt, err := parseDueDate(due)
	if err != nil {
		result.Skipped++
		result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", rowNum, err))
		return
	}

	task := &models.HomeworkTask{
		ID:      uuid.NewString(),
		UserID:  userID,
		Subject: subject,
		Title:   strings.TrimSpace(title),
		DueAt:   dueAt,
	}
	if err := repo.Create(task); err != nil {
		result.Skipped++
		result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", rowNum, err))
		return
	}
	result.Created++
}

func parseDueDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("due date is required")
	}
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized due date %q", s)
}

// columnIndex converts a column letter to a zero-based slice index.
func columnIndex(letter string) (int, error) {
	n, err := excelize.ColumnNameToNumber(letter)
	if err != nil {
		return 0, fmt.Errorf("invalid column %q: %w", letter, err)
	}
	return n - 1, nil
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
