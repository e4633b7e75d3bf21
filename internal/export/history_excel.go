package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"alertaja/internal/models"

	"github.com/xuri/excelize/v2"
)

// SheetName 导出工作表名称
const SheetName = "SOS History"

// HistoryHeader 导出表头
var HistoryHeader = []string{
	"ID",
	"Time",
	"Latitude",
	"Longitude",
	"Map Link",
	"Contacts Notified",
	"Contact Names",
	"Cancelled",
}

// columnWidths 与 HistoryHeader 一一对应
var columnWidths = []float64{38, 20, 12, 12, 45, 18, 40, 12}

// HistoryWorkbook 生成 SOS 历史 Excel 文件
// contacts 用于把联系人 ID 解析为姓名，已删除的联系人保留 ID
func HistoryWorkbook(records []models.SOSRecord, contacts []models.EmergencyContact, loc *time.Location) ([]byte, error) {
	if loc == nil {
		loc = time.Local
	}

	names := make(map[string]string, len(contacts))
	for _, c := range contacts {
		names[c.ID] = c.Name
	}

	f := excelize.NewFile()

	index, err := f.NewSheet(SheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	// 1. 表头
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold:  true,
			Color: "#FFFFFF",
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#C0392B"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, header := range HistoryHeader {
		if err := setCellValue(f, col+1, 1, header); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header cell: %w", err)
		}
	}
	if err := f.SetCellStyle(SheetName, "A1", lastHeaderCell(), headerStyle); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to set header style: %w", err)
	}

	// 2. 列宽
	for i, width := range columnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(SheetName, col, col, width); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	// 3. 数据行（保持最新在前）
	for i, r := range records {
		row := i + 2
		values := []interface{}{
			r.ID,
			r.Time().In(loc).Format("2006-01-02 15:04:05"),
			nil,
			nil,
			"",
			len(r.ContactsNotified),
			contactNames(r.ContactsNotified, names),
			yesNo(r.Cancelled),
		}
		if r.HasLocation() {
			values[2] = *r.Latitude
			values[3] = *r.Longitude
			values[4] = fmt.Sprintf("https://maps.google.com/?q=%v,%v", *r.Latitude, *r.Longitude)
		}

		for col, v := range values {
			if v == nil || v == "" {
				continue
			}
			if err := setCellValue(f, col+1, row, v); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to set cell value at row %d, col %d: %w", row, col+1, err)
			}
		}
	}

	// 4. 冻结表头
	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to freeze panes: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write to buffer: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close file: %w", err)
	}

	return buf.Bytes(), nil
}

func setCellValue(f *excelize.File, col, row int, value interface{}) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(SheetName, cell, value)
}

func lastHeaderCell() string {
	cell, _ := excelize.CoordinatesToCellName(len(HistoryHeader), 1)
	return cell
}

func contactNames(ids []string, names map[string]string) string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, ok := names[id]; ok {
			out = append(out, name)
		} else {
			out = append(out, id)
		}
	}
	return strings.Join(out, ", ")
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
