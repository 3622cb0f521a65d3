package importer

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrNoTitleColumn is returned when a sheet has no recognizable title column.
var ErrNoTitleColumn = errors.New("sheet has no course title column")

// SheetName is the sheet WriteXLSX creates.
const SheetName = "课程表"

// columnAliases maps header text to Record fields.
var columnAliases = map[string]string{
	"课程名称": "title", "课程": "title", "课程名": "title", "title": "title", "course": "title",
	"上课地点": "location", "地点": "location", "教室": "location", "location": "location",
	"授课教师": "instructor", "教师": "instructor", "老师": "instructor", "instructor": "instructor", "teacher": "instructor",
	"星期": "day", "上课时间": "day", "day": "day",
	"节次": "slot", "上课节数": "slot", "slot": "slot", "slots": "slot",
	"周数": "weeks", "上课周数": "weeks", "weeks": "weeks",
	"周类型": "week_type", "单双周": "week_type", "week_type": "week_type",
	"提醒": "reminder", "reminder": "reminder",
	"联系方式": "contact", "contact": "contact",
	"课程性质": "property", "性质": "property", "property": "property",
	"备注": "remarks", "remarks": "remarks",
}

// sheetHeader is the column order WriteXLSX produces.
var sheetHeader = []any{"课程名称", "上课地点", "授课教师", "星期", "节次", "周数", "周类型", "提醒", "联系方式", "课程性质", "备注"}

// ReadXLSXFile opens a workbook and reads records from its first sheet.
func ReadXLSXFile(path string) ([]Record, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer func() { _ = f.Close() }()
	return ReadXLSX(f)
}

// ReadXLSX reads records from the first sheet of f. The first row is the
// header; columns are matched by name, so their order does not matter.
// Rows without a title are skipped.
func ReadXLSX(f *excelize.File) ([]Record, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	mapping := make(map[int]string, len(rows[0]))
	hasTitle := false
	for i, h := range rows[0] {
		field, ok := columnAliases[strings.ToLower(strings.TrimSpace(h))]
		if !ok {
			continue
		}
		mapping[i] = field
		hasTitle = hasTitle || field == "title"
	}
	if !hasTitle {
		return nil, ErrNoTitleColumn
	}

	var records []Record
	for _, row := range rows[1:] {
		var r Record
		for i, cell := range row {
			field, ok := mapping[i]
			if !ok {
				continue
			}
			setField(&r, field, strings.TrimSpace(cell))
		}
		if r.Title == "" {
			continue
		}
		records = append(records, r)
	}
	return records, nil
}

func setField(r *Record, field, value string) {
	switch field {
	case "title":
		r.Title = value
	case "location":
		r.Location = value
	case "instructor":
		r.Instructor = value
	case "day":
		r.Day = value
	case "slot":
		r.Slot = value
	case "weeks":
		r.Weeks = value
	case "week_type":
		r.WeekType = value
	case "reminder":
		b, err := strconv.ParseBool(value)
		r.Reminder = (err == nil && b) || value == "是"
	case "contact":
		r.Contact = value
	case "property":
		r.Property = value
	case "remarks":
		r.Remarks = value
	}
}

// WriteXLSX writes records as a workbook ReadXLSX can read back.
func WriteXLSX(w io.Writer, records []Record) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}
	if err := f.SetSheetRow(SheetName, "A1", &sheetHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		reminder := "否"
		if r.Reminder {
			reminder = "是"
		}
		row := []any{r.Title, r.Location, r.Instructor, r.Day, r.Slot, r.Weeks, r.WeekType, reminder, r.Contact, r.Property, r.Remarks}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}
