package excel

import (
	"errors"
	"fmt"
)

// ErrFile 工作簿无法读取或缺少必需内容，整次计算中止
var ErrFile = errors.New("file error")

// FileError 工作簿级错误
type FileError struct {
	Sheet string // 出错的工作表，打不开文件时为空
	Err   error
}

func (e *FileError) Error() string {
	if e.Sheet == "" {
		return fmt.Sprintf("Fehler beim Verarbeiten der Datei: %v", e.Err)
	}
	return fmt.Sprintf("Fehler beim Verarbeiten der Datei: Blatt %q: %v", e.Sheet, e.Err)
}

func (e *FileError) Unwrap() []error {
	return []error{ErrFile, e.Err}
}

func fileError(sheet string, format string, args ...any) *FileError {
	return &FileError{Sheet: sheet, Err: fmt.Errorf(format, args...)}
}
