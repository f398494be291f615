package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/iglide21/BabyBuddy-sub001/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// GetSummary totals the last 24 hours of care events.
func GetSummary(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		baby := currentBaby(c)
		summary, err := service.SummarizeLastDay(c.Request.Context(), app.Store(), baby.ID, time.Now())
		if err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to build summary")
			return
		}
		HandleSuccess(c, app.Logger(), summary, nil)
	}
}

// GetExport streams the care workbook as an xlsx attachment.
func GetExport(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		baby := currentBaby(c)
		data, err := service.LoadCareData(c.Request.Context(), app.Store(), baby.ID)
		if err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to load care data")
			return
		}
		wb, err := service.BuildCareWorkbook(data)
		if err != nil {
			HandleError(c, app.Logger(), err, http.StatusInternalServerError, "Failed to build workbook")
			return
		}
		defer wb.Close()

		buf, err := wb.WriteToBuffer()
		if err != nil {
			HandleError(c, app.Logger(), err, http.StatusInternalServerError, "Failed to write workbook")
			return
		}
		app.Logger().Infof("[request_id=%s] Exported %d bytes for baby %s", c.GetString("request_id"), buf.Len(), baby.ID)
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="babymax-%s.xlsx"`, baby.ID))
		c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
	}
}
