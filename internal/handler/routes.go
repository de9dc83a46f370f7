package handler

import "github.com/gin-gonic/gin"

// Handlers bundles the compliance endpoints mounted by RegisterRoutes.
type Handlers struct {
	Requirements *RequirementHandler
	Documents    *DocumentHandler
	Versions     *VersionHandler
	Import       *ImportHandler
	Reports      *ReportHandler
}

// RegisterRoutes mounts the compliance API on r. Nil handlers are skipped.
func RegisterRoutes(r gin.IRouter, h Handlers) {
	if h.Requirements != nil {
		r.GET("/requirements", h.Requirements.List)
		r.PATCH("/requirements/:id", h.Requirements.UpdateStatus)
	}
	if h.Documents != nil {
		r.GET("/documents", h.Documents.List)
		r.PATCH("/documents/:id", h.Documents.Update)
	}
	if h.Versions != nil {
		r.POST("/documents/:id/versions", h.Versions.Create)
		r.PATCH("/documents/versions/:id", h.Versions.Update)
		r.PATCH("/documents/versions/:id/upload-file", h.Versions.UploadFile)
		r.GET("/documents/versions/:id/download-url", h.Versions.DownloadURL)
		r.GET("/documents/versions/:id/file", h.Versions.Download)
	}
	if h.Import != nil {
		r.POST("/upload-csv", h.Import.UploadCSV)
	}
	if h.Reports != nil {
		r.GET("/reports/compliance.csv", h.Reports.CSV)
		r.GET("/reports/compliance.pdf", h.Reports.PDF)
	}
}
