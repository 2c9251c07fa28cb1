package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"frachtrechner/internal/config"
	"frachtrechner/internal/model"
	"frachtrechner/internal/service/excel"
	"frachtrechner/internal/service/store"
	"frachtrechner/internal/service/tariff"
)

// 错误码
const (
	codeBadParams    = 1001
	codeBadFile      = 1002
	codeFileTooLarge = 1003
	codeNoSession    = 2001
	codeExportFailed = 3001
)

// multipartOverhead multipart 边界与表单头部的额外字节
const multipartOverhead = 64 * 1024

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handlers API处理器
type Handlers struct {
	store  *store.MemoryStore
	cfg    *config.AppConfig
	logger *zap.Logger
}

// NewHandlers 创建处理器
func NewHandlers(store *store.MemoryStore, cfg *config.AppConfig, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		store:  store,
		cfg:    cfg,
		logger: logger,
	}
}

// Response 通用响应
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

func errorResponse(c *gin.Context, code int, message string) {
	c.JSON(http.StatusOK, Response{
		Code:    code,
		Message: message,
	})
}

// uploadError 上传失败，携带错误码
type uploadError struct {
	code    int
	message string
}

func (e *uploadError) Error() string { return e.message }

// CalculateRequest 计算请求
type CalculateRequest struct {
	Import model.LegInput `json:"import"`
	Export model.LegInput `json:"export"`
}

// ==================== Upload ====================

// readUpload 读取 multipart 中的 file 字段并加载参考表
func (h *Handlers) readUpload(c *gin.Context) (*store.Session, error) {
	limit := h.cfg.MaxUploadBytes()
	tooLarge := &uploadError{
		code:    codeFileTooLarge,
		message: fmt.Sprintf("Datei zu groß, maximal %d MB.", h.cfg.Upload.MaxSizeMB),
	}

	// 解析 multipart 之前截断请求体，预留表单头部开销
	bodyLimit := limit + multipartOverhead
	if c.Request.ContentLength > bodyLimit {
		return nil, tooLarge
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, bodyLimit)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, tooLarge
		}
		return nil, &uploadError{code: codeBadParams, message: "Bitte Excel-Datei hochladen."}
	}
	defer file.Close()

	if header.Size > limit {
		return nil, tooLarge
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".xlsx" {
		return nil, &uploadError{code: codeBadFile, message: "Nur .xlsx-Dateien werden unterstützt."}
	}

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, &uploadError{code: codeBadFile, message: "Datei konnte nicht gelesen werden."}
	}

	tables, err := excel.Load(bytes.NewReader(content))
	if err != nil {
		h.logger.Warn("workbook rejected", zap.String("file", header.Filename), zap.Error(err))
		return nil, &uploadError{code: codeBadFile, message: err.Error()}
	}

	session := h.store.Put(header.Filename, tables)
	h.logger.Info("workbook loaded",
		zap.String("session", session.ID),
		zap.String("file", header.Filename),
		zap.Int("countries", len(tables.Countries)),
		zap.Int("tariffs", len(tables.Tariffs)),
		zap.Int("bands", len(tables.Bands)),
	)
	return session, nil
}

// UploadFile 上传Excel文件
// POST /api/upload
func (h *Handlers) UploadFile(c *gin.Context) {
	session, err := h.readUpload(c)
	if err != nil {
		var ue *uploadError
		if errors.As(err, &ue) {
			errorResponse(c, ue.code, ue.message)
			return
		}
		errorResponse(c, codeBadFile, err.Error())
		return
	}

	success(c, sessionPayload(session))
}

// ==================== Sessions ====================

func sessionPayload(session *store.Session) gin.H {
	return gin.H{
		"sessionId": session.ID,
		"fileName":  session.FileName,
		"options":   session.Tables.Options(),
	}
}

// GetSession 获取会话的下拉框选项
// GET /api/sessions/:id
func (h *Handlers) GetSession(c *gin.Context) {
	session, err := h.store.Get(c.Param("id"))
	if err != nil {
		errorResponse(c, codeNoSession, "Sitzung nicht gefunden oder abgelaufen.")
		return
	}
	success(c, sessionPayload(session))
}

// DeleteSession 删除会话
// DELETE /api/sessions/:id
func (h *Handlers) DeleteSession(c *gin.Context) {
	if err := h.store.Delete(c.Param("id")); err != nil {
		errorResponse(c, codeNoSession, "Sitzung nicht gefunden oder abgelaufen.")
		return
	}
	success(c, gin.H{"deleted": true})
}

// ==================== Calculation ====================

// calculate 校验输入后计算两段费用
func (h *Handlers) calculate(session *store.Session, req CalculateRequest) (*tariff.Calculation, error) {
	if err := validateWeight(model.LegImport, req.Import.Weight); err != nil {
		return nil, err
	}
	if err := validateWeight(model.LegExport, req.Export.Weight); err != nil {
		return nil, err
	}

	calc := tariff.NewResolver(session.Tables).Calculate(req.Import, req.Export)
	for _, leg := range []tariff.LegOutcome{calc.Import, calc.Export} {
		if leg.Err != nil {
			h.logger.Warn("leg not resolved",
				zap.String("session", session.ID),
				zap.String("leg", string(leg.Leg)),
				zap.String("country", leg.Input.Country),
				zap.String("tariff", leg.Input.Tariff),
				zap.Float64("weight", leg.Input.Weight),
				zap.Error(leg.Err),
			)
		}
	}
	if calc.Job != nil {
		h.logger.Info("job cost calculated",
			zap.String("session", session.ID),
			zap.Float64("jobCost", calc.Job.JobCost),
		)
	}
	return calc, nil
}

// Calculate 计算进口/出口费用及 Job 费用
// POST /api/sessions/:id/calculate
func (h *Handlers) Calculate(c *gin.Context) {
	session, err := h.store.Get(c.Param("id"))
	if err != nil {
		errorResponse(c, codeNoSession, "Sitzung nicht gefunden oder abgelaufen.")
		return
	}

	var req CalculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, codeBadParams, "Ungültige Parameter.")
		return
	}

	calc, err := h.calculate(session, req)
	if err != nil {
		errorResponse(c, codeBadParams, err.Error())
		return
	}
	success(c, calc)
}

// Export 导出计算结果为 Excel
// POST /api/sessions/:id/export
func (h *Handlers) Export(c *gin.Context) {
	session, err := h.store.Get(c.Param("id"))
	if err != nil {
		errorResponse(c, codeNoSession, "Sitzung nicht gefunden oder abgelaufen.")
		return
	}

	var req CalculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, codeBadParams, "Ungültige Parameter.")
		return
	}

	calc, err := h.calculate(session, req)
	if err != nil {
		errorResponse(c, codeBadParams, err.Error())
		return
	}
	h.writeExport(c, calc)
}

func (h *Handlers) writeExport(c *gin.Context, calc *tariff.Calculation) {
	file, err := excel.NewExporter(h.cfg.Display.Currency).Export(calc)
	if err != nil {
		h.logger.Error("export failed", zap.Error(err))
		errorResponse(c, codeExportFailed, "Export fehlgeschlagen: "+err.Error())
		return
	}
	defer file.Close()

	buf, err := file.WriteToBuffer()
	if err != nil {
		h.logger.Error("export failed", zap.Error(err))
		errorResponse(c, codeExportFailed, "Export fehlgeschlagen: "+err.Error())
		return
	}

	c.Header("Content-Disposition", `attachment; filename="frachtkosten.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// Status 服务状态
// GET /api/status
func (h *Handlers) Status(c *gin.Context) {
	success(c, gin.H{
		"sessions":         h.store.Count(),
		"currency":         h.cfg.Display.Currency,
		"scalingThreshold": tariff.ScalingThreshold,
	})
}

// ==================== Input ====================

func validateWeight(leg model.Leg, weight float64) error {
	if math.IsNaN(weight) || math.IsInf(weight, 0) || weight <= 0 {
		return fmt.Errorf("%s: Gewicht muss größer als 0 sein.", leg)
	}
	return nil
}

// parseWeight 解析表单中的重量，兼容逗号小数点
func parseWeight(leg model.Leg, s string) (float64, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, ",") && !strings.Contains(s, ".") {
		s = strings.ReplaceAll(s, ",", ".")
	}
	weight, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: Ungültiges Gewicht %q.", leg, s)
	}
	if err := validateWeight(leg, weight); err != nil {
		return 0, err
	}
	return weight, nil
}
