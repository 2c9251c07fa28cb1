package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"frachtrechner/internal/model"
	"frachtrechner/internal/service/store"
	"frachtrechner/internal/service/tariff"
)

const (
	pageIndex      = "index.html"
	pageCalculator = "calculator.html"
)

// legForm 表单中单个运输段的原始输入
type legForm struct {
	Country string
	Tariff  string
	Weight  string
}

// pageData 页面渲染数据
type pageData struct {
	Title    string
	Error    string
	Currency string

	SessionID string
	FileName  string
	Options   model.Options

	Import legForm
	Export legForm
	Calc   *tariff.Calculation
}

func (h *Handlers) newPage() pageData {
	return pageData{
		Title:    "Frachtenrechner – Import & Export",
		Currency: h.cfg.Display.Currency,
	}
}

// sessionPage 基于会话构造计算页，下拉框默认选中第一项
func (h *Handlers) sessionPage(session *store.Session) pageData {
	page := h.newPage()
	page.SessionID = session.ID
	page.FileName = session.FileName
	page.Options = session.Tables.Options()

	first := legForm{Weight: "0.01"}
	if len(page.Options.Countries) > 0 {
		first.Country = page.Options.Countries[0]
	}
	if len(page.Options.Tariffs) > 0 {
		first.Tariff = page.Options.Tariffs[0]
	}
	page.Import = first
	page.Export = first
	return page
}

// Index 上传页
// GET /
func (h *Handlers) Index(c *gin.Context) {
	c.HTML(http.StatusOK, pageIndex, h.newPage())
}

// UploadForm 表单上传，成功后跳转到计算页
// POST /upload
func (h *Handlers) UploadForm(c *gin.Context) {
	session, err := h.readUpload(c)
	if err != nil {
		page := h.newPage()
		page.Error = err.Error()
		status := http.StatusBadRequest
		var ue *uploadError
		if errors.As(err, &ue) && ue.code == codeFileTooLarge {
			status = http.StatusRequestEntityTooLarge
		}
		c.HTML(status, pageIndex, page)
		return
	}

	c.Redirect(http.StatusSeeOther, "/sessions/"+session.ID)
}

// SessionPage 计算页
// GET /sessions/:id
func (h *Handlers) SessionPage(c *gin.Context) {
	session, ok := h.pageSession(c)
	if !ok {
		return
	}
	c.HTML(http.StatusOK, pageCalculator, h.sessionPage(session))
}

// CalculateForm 表单提交计算
// POST /sessions/:id
func (h *Handlers) CalculateForm(c *gin.Context) {
	session, ok := h.pageSession(c)
	if !ok {
		return
	}

	page := h.sessionPage(session)
	page.Import = readLegForm(c, "import")
	page.Export = readLegForm(c, "export")

	req, err := page.request()
	if err != nil {
		page.Error = err.Error()
		c.HTML(http.StatusBadRequest, pageCalculator, page)
		return
	}

	calc, err := h.calculate(session, req)
	if err != nil {
		page.Error = err.Error()
		c.HTML(http.StatusBadRequest, pageCalculator, page)
		return
	}
	page.Calc = calc
	c.HTML(http.StatusOK, pageCalculator, page)
}

// ExportForm 表单提交导出
// POST /sessions/:id/export
func (h *Handlers) ExportForm(c *gin.Context) {
	session, ok := h.pageSession(c)
	if !ok {
		return
	}

	page := h.sessionPage(session)
	page.Import = readLegForm(c, "import")
	page.Export = readLegForm(c, "export")

	req, err := page.request()
	if err == nil {
		var calc *tariff.Calculation
		if calc, err = h.calculate(session, req); err == nil {
			h.writeExport(c, calc)
			return
		}
	}
	page.Error = err.Error()
	c.HTML(http.StatusBadRequest, pageCalculator, page)
}

// pageSession 读取会话；不存在时渲染上传页
func (h *Handlers) pageSession(c *gin.Context) (*store.Session, bool) {
	session, err := h.store.Get(c.Param("id"))
	if err != nil {
		page := h.newPage()
		page.Error = "Sitzung nicht gefunden oder abgelaufen. Bitte Excel-Datei erneut hochladen."
		c.HTML(http.StatusNotFound, pageIndex, page)
		return nil, false
	}
	return session, true
}

func readLegForm(c *gin.Context, prefix string) legForm {
	return legForm{
		Country: c.PostForm(prefix + "_country"),
		Tariff:  c.PostForm(prefix + "_tariff"),
		Weight:  c.PostForm(prefix + "_weight"),
	}
}

// request 将表单输入转换为计算请求
func (p pageData) request() (CalculateRequest, error) {
	importWeight, err := parseWeight(model.LegImport, p.Import.Weight)
	if err != nil {
		return CalculateRequest{}, err
	}
	exportWeight, err := parseWeight(model.LegExport, p.Export.Weight)
	if err != nil {
		return CalculateRequest{}, err
	}
	return CalculateRequest{
		Import: model.LegInput{Country: p.Import.Country, Tariff: p.Import.Tariff, Weight: importWeight},
		Export: model.LegInput{Country: p.Export.Country, Tariff: p.Export.Tariff, Weight: exportWeight},
	}, nil
}
