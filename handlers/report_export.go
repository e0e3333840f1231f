package handlers

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/xuri/excelize/v2"
	"p9e.in/prodtrack/models"
)

// ExportReportToExcel builds the scoped report and streams it as an
// Excel workbook with one sheet per breakdown.
// GET /api/v1/reports/{level}/{id}/export/excel
func ExportReportToExcel(w http.ResponseWriter, r *http.Request) {
	report, err := buildExportReport(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	excelFile, err := createExcelFile(report)
	if err != nil {
		http.Error(w, "Failed to generate Excel file", http.StatusInternalServerError)
		return
	}

	buffer, err := excelFile.WriteToBuffer()
	if err != nil {
		http.Error(w, "Failed to write Excel file", http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("%s_%s.xlsx", exportFilename(report), time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", buffer.Len()))

	w.WriteHeader(http.StatusOK)
	w.Write(buffer.Bytes())
}

// ExportReportToCSV builds the scoped report and streams its daily
// breakdown plus totals as CSV.
// GET /api/v1/reports/{level}/{id}/export/csv
func ExportReportToCSV(w http.ResponseWriter, r *http.Request) {
	report, err := buildExportReport(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	csvData, err := createCSVFile(report)
	if err != nil {
		http.Error(w, "Failed to generate CSV file", http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("%s_%s.csv", exportFilename(report), time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(csvData)))

	w.WriteHeader(http.StatusOK)
	w.Write(csvData)
}

func buildExportReport(r *http.Request) (*models.ProductionReport, error) {
	vars := mux.Vars(r)

	level := models.ScopeLevel(vars["level"])
	switch level {
	case models.ScopeFactory, models.ScopeLine, models.ScopeTeam, models.ScopeGroup:
	default:
		return nil, models.InvalidInputError("unknown report level %q", vars["level"])
	}

	id, err := uuid.Parse(vars["id"])
	if err != nil {
		return nil, models.InvalidInputError("invalid %s id %q", level, vars["id"])
	}

	from, to, err := parseDateRange(r)
	if err != nil {
		return nil, err
	}

	engine := NewProductionReportEngine()
	opts := models.AllReportOptions()
	switch level {
	case models.ScopeFactory:
		return engine.ByFactory(id, from, to, opts)
	case models.ScopeLine:
		return engine.ByLine(id, from, to, opts)
	case models.ScopeTeam:
		return engine.ByTeam(id, from, to, opts)
	default:
		return engine.ByGroup(id, from, to, opts)
	}
}

// createExcelFile generates an Excel workbook from a production report
func createExcelFile(report *models.ProductionReport) (*excelize.File, error) {
	f := excelize.NewFile()
	sheetName := "Summary"

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
			Size: 16,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "left",
			Vertical:   "center",
		},
	})
	title := fmt.Sprintf("Production Report - %s %s", report.Scope.Level, report.Scope.Name)
	f.SetCellValue(sheetName, "A1", title)
	f.SetCellStyle(sheetName, "A1", "A1", titleStyle)
	f.SetRowHeight(sheetName, 1, 30)

	f.SetCellValue(sheetName, "A2", fmt.Sprintf("Period: %s to %s",
		report.DateFrom.Format("2006-01-02"), report.DateTo.Format("2006-01-02")))
	f.SetCellValue(sheetName, "A3", fmt.Sprintf("Generated: %s",
		report.GeneratedAt.Format("2006-01-02 15:04:05")))

	// Totals block
	totals := [][]interface{}{
		{"Forms", report.Totals.FormCount},
		{"Entries", report.Totals.EntryCount},
		{"Total Output", report.Totals.TotalOutput},
		{"Total Planned", report.Totals.TotalPlanned},
		{"Efficiency %", report.Totals.Efficiency},
		{"Average Quality %", report.Totals.AverageQuality},
		{"Present %", report.Attendance.PercentPresent},
	}
	for i, row := range totals {
		keyCell, _ := excelize.CoordinatesToCellName(1, 5+i)
		valueCell, _ := excelize.CoordinatesToCellName(2, 5+i)
		f.SetCellValue(sheetName, keyCell, row[0])
		f.SetCellValue(sheetName, valueCell, row[1])
	}
	f.SetColWidth(sheetName, "A", "B", 22)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#4472C4"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})

	writeSheet := func(name string, headers []string, rows [][]interface{}) error {
		if _, err := f.NewSheet(name); err != nil {
			return err
		}
		for colIdx, header := range headers {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, 1)
			f.SetCellValue(name, cell, header)
			f.SetCellStyle(name, cell, cell, headerStyle)
			f.SetColWidth(name, columnIndexToLetter(colIdx+1), columnIndexToLetter(colIdx+1), 18)
		}
		for rowIdx, row := range rows {
			for colIdx, value := range row {
				cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
				f.SetCellValue(name, cell, value)
			}
		}
		return nil
	}

	dailyRows := make([][]interface{}, 0, len(report.ByDay))
	for _, d := range report.ByDay {
		dailyRows = append(dailyRows, []interface{}{d.Date, d.FormCount, d.EntryCount, d.Output, d.Planned, d.Efficiency})
	}
	if err := writeSheet("Daily", []string{"Date", "Forms", "Entries", "Output", "Planned", "Efficiency %"}, dailyRows); err != nil {
		return nil, err
	}

	productRows := make([][]interface{}, 0, len(report.ByProduct))
	for _, p := range report.ByProduct {
		productRows = append(productRows, []interface{}{p.Code, p.Name, p.EntryCount, p.Output, p.Percent})
	}
	if err := writeSheet("Products", []string{"Code", "Name", "Entries", "Output", "Share %"}, productRows); err != nil {
		return nil, err
	}

	colorRows := make([][]interface{}, 0, len(report.ByColor))
	for _, c := range report.ByColor {
		colorRows = append(colorRows, []interface{}{c.Code, c.Name, c.EntryCount, c.Output})
	}
	if err := writeSheet("Colors", []string{"Code", "Name", "Entries", "Output"}, colorRows); err != nil {
		return nil, err
	}

	processRows := make([][]interface{}, 0, len(report.ByProcess))
	for _, p := range report.ByProcess {
		processRows = append(processRows, []interface{}{p.Code, p.Name, p.EntryCount, p.Output})
	}
	if err := writeSheet("Processes", []string{"Code", "Name", "Entries", "Output"}, processRows); err != nil {
		return nil, err
	}

	hourlyRows := make([][]interface{}, 0, len(report.ByHour))
	for _, h := range report.ByHour {
		hourlyRows = append(hourlyRows, []interface{}{h.Label, h.Output, h.EntryCount, h.Average})
	}
	if err := writeSheet("Hourly", []string{"Slot", "Output", "Entries", "Average"}, hourlyRows); err != nil {
		return nil, err
	}

	if len(report.Children) > 0 {
		childRows := make([][]interface{}, 0, len(report.Children))
		for _, c := range report.Children {
			childRows = append(childRows, []interface{}{c.Code, c.Name, c.WorkerCount, c.Output, c.AvgPerWorker, c.RelativeEfficiency})
		}
		if err := writeSheet("Units", []string{"Code", "Name", "Workers", "Output", "Avg/Worker", "Relative %"}, childRows); err != nil {
			return nil, err
		}
	}

	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	return f, nil
}

// createCSVFile generates a CSV file from a production report
func createCSVFile(report *models.ProductionReport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	writer.Write([]string{"Date", "Forms", "Entries", "Output", "Planned", "Efficiency %"})
	for _, d := range report.ByDay {
		writer.Write([]string{
			d.Date,
			strconv.Itoa(d.FormCount),
			strconv.Itoa(d.EntryCount),
			strconv.Itoa(d.Output),
			strconv.Itoa(d.Planned),
			strconv.Itoa(d.Efficiency),
		})
	}

	writer.Write([]string{})
	writer.Write([]string{"Summary"})
	writer.Write([]string{"Total Output", strconv.Itoa(report.Totals.TotalOutput)})
	writer.Write([]string{"Total Planned", strconv.Itoa(report.Totals.TotalPlanned)})
	writer.Write([]string{"Efficiency %", strconv.Itoa(report.Totals.Efficiency)})
	writer.Write([]string{"Average Quality %", strconv.Itoa(report.Totals.AverageQuality)})

	writer.Flush()
	return buf.Bytes(), writer.Error()
}

// Helper functions

func exportFilename(report *models.ProductionReport) string {
	return sanitizeFilename(fmt.Sprintf("%s_%s", report.Scope.Level, report.Scope.Code))
}

func sanitizeFilename(filename string) string {
	replacements := map[rune]rune{
		'/':  '_',
		'\\': '_',
		':':  '_',
		'*':  '_',
		'?':  '_',
		'"':  '_',
		'<':  '_',
		'>':  '_',
		'|':  '_',
		' ':  '_',
	}

	result := []rune{}
	for _, char := range filename {
		if replacement, exists := replacements[char]; exists {
			result = append(result, replacement)
		} else {
			result = append(result, char)
		}
	}

	return string(result)
}

func columnIndexToLetter(col int) string {
	result := ""
	for col > 0 {
		col--
		result = string(rune('A'+(col%26))) + result
		col /= 26
	}
	return result
}
