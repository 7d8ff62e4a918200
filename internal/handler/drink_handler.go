package handler

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/bobalog/internal/service"
	"github.com/gin-gonic/gin"
)

const maxImportBytes = 10 << 20

type drinkRequest struct {
	Brand      string  `json:"brand"`
	DrinkName  string  `json:"drinkName"`
	SugarValue int     `json:"sugarValue"`
	IceLevel   string  `json:"iceLevel"`
	Toppings   string  `json:"toppings"`
	Review     string  `json:"review"`
	Price      float64 `json:"price"`
	Rating     int     `json:"rating"`
	Date       string  `json:"date"`
}

func (r drinkRequest) toInput() service.DrinkInput {
	return service.DrinkInput{
		Brand:      r.Brand,
		DrinkName:  r.DrinkName,
		SugarValue: r.SugarValue,
		IceLevel:   r.IceLevel,
		Toppings:   r.Toppings,
		Review:     r.Review,
		Price:      r.Price,
		Rating:     r.Rating,
		Date:       r.Date,
	}
}

// ListRecords 返回当前群组的全部记录。
func (a *API) ListRecords(c *gin.Context) {
	_, group := a.identity(c)
	records, err := a.store(group).List(c.Request.Context())
	if err != nil {
		a.logger.Error("list drink records", "group", group, "error", err)
		respondError(c, http.StatusInternalServerError, "讀取紀錄失敗："+err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records, "total": len(records)})
}

// CreateRecord 以当前昵称新增一条记录。
func (a *API) CreateRecord(c *gin.Context) {
	var payload drinkRequest
	if !bindJSON(c, &payload, "請填寫完整的飲料資訊") {
		return
	}

	nickname, group := a.identity(c)
	record, err := service.BuildRecord(payload.toInput(), nickname, a.now())
	if err != nil {
		respondError(c, http.StatusBadRequest, "請填寫完整的飲料資訊")
		return
	}

	if err := a.store(group).Put(c.Request.Context(), record); err != nil {
		a.logger.Error("save drink record", "group", group, "error", err)
		respondError(c, http.StatusInternalServerError, "儲存紀錄失敗")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"record": record})
}

// UpdateRecord 以新的内容整体覆盖指定记录。
func (a *API) UpdateRecord(c *gin.Context) {
	var payload drinkRequest
	if !bindJSON(c, &payload, "請填寫完整的飲料資訊") {
		return
	}

	_, group := a.identity(c)
	store := a.store(group)
	existing, err := store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "找不到這筆紀錄")
			return
		}
		respondError(c, http.StatusInternalServerError, "讀取紀錄失敗")
		return
	}

	record, err := service.ReplaceRecord(*existing, payload.toInput())
	if err != nil {
		respondError(c, http.StatusBadRequest, "請填寫完整的飲料資訊")
		return
	}
	if err := store.Put(c.Request.Context(), record); err != nil {
		a.logger.Error("update drink record", "group", group, "error", err)
		respondError(c, http.StatusInternalServerError, "儲存紀錄失敗")
		return
	}

	c.JSON(http.StatusOK, gin.H{"record": record})
}

// DeleteRecord 删除指定记录，必须带 confirm=true。
func (a *API) DeleteRecord(c *gin.Context) {
	if service.RequiresDeleteConfirmation(queryBool(c, "confirm")) {
		c.JSON(http.StatusConflict, gin.H{"error": "確定要放生這筆紀錄嗎？", "code": "confirm_required"})
		return
	}

	_, group := a.identity(c)
	if err := a.store(group).Delete(c.Request.Context(), c.Param("id")); err != nil {
		a.logger.Error("delete drink record", "group", group, "error", err)
		respondError(c, http.StatusInternalServerError, "刪除紀錄失敗")
		return
	}
	c.Status(http.StatusNoContent)
}

// ResetRecords 清空当前群组的全部记录，必须带 confirm=true。
func (a *API) ResetRecords(c *gin.Context) {
	if service.RequiresDeleteConfirmation(queryBool(c, "confirm")) {
		c.JSON(http.StatusConflict, gin.H{"error": "警告：這將清空所有紀錄並重置 App，確定嗎？", "code": "confirm_required"})
		return
	}

	_, group := a.identity(c)
	if err := a.store(group).Clear(c.Request.Context()); err != nil {
		a.logger.Error("clear drink records", "group", group, "error", err)
		respondError(c, http.StatusInternalServerError, "清空紀錄失敗")
		return
	}
	c.Status(http.StatusNoContent)
}

// ExportRecords 以 JSON 数组下载当前群组的全部记录。
func (a *API) ExportRecords(c *gin.Context) {
	nickname, group := a.identity(c)
	data, err := a.store(group).ExportJSON(c.Request.Context())
	if err != nil {
		a.logger.Error("export drink records", "group", group, "error", err)
		respondError(c, http.StatusInternalServerError, "匯出失敗")
		return
	}

	owner := strings.TrimSpace(nickname)
	if owner == "" {
		owner = "guest"
	}
	filename := "手搖飲全紀錄_" + owner + "_備份.json"
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(filename))
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

// ImportRecords 合并上传的备份，只新增未出现过的 ID。
func (a *API) ImportRecords(c *gin.Context) {
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxImportBytes))
	if err != nil {
		respondError(c, http.StatusBadRequest, "讀取匯入檔案失敗")
		return
	}

	_, group := a.identity(c)
	result, err := a.store(group).Import(c.Request.Context(), raw)
	if err != nil {
		if errors.Is(err, service.ErrInvalidImportPayload) {
			respondError(c, http.StatusBadRequest, "匯入失敗，檔案格式錯誤")
			return
		}
		a.logger.Error("import drink records", "group", group, "error", err)
		respondError(c, http.StatusInternalServerError, "匯入失敗")
		return
	}

	c.JSON(http.StatusOK, result)
}
