package ingest

import (
	"encoding/json"
	"fmt"
	"net/http"

	"AdPulseAnalytics/api"
	"AdPulseAnalytics/api/constants"
	"AdPulseAnalytics/api/utils"
	"AdPulseAnalytics/internal/config"
)

// ValidateUpload checks the headers of an uploaded file without
// persisting anything. Responds with the validation result plus mapping
// candidates and an auto-resolved mapping for the missing columns.
func ValidateUpload() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("file")
		if err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrNoFilesUploaded)
			return
		}
		defer file.Close()

		records, err := parseUploadFile(file, getFileExt(header.Filename))
		if err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "Invalid file: "+header.Filename)
			return
		}

		var headers []string
		if len(records) > 0 {
			headers = records[0]
		}
		validation := ValidateHeaders(headers)
		candidates := ResolveColumnMapping(validation.MissingHeaders, headers)

		w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":      true,
			"validation":   validation,
			"candidates":   candidates,
			"auto_mapping": AutoMapping(candidates),
		})
	}
}

// UploadCampaignData runs the full pipeline for each uploaded file:
// parse, validate headers, normalize rows, persist in batches. An
// optional `mapping` form field (JSON canonical -> source header)
// redirects lookups for columns the file names differently.
func UploadCampaignData(store UploadStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := api.GetUserIDFromCtx(ctx)

		if err := r.ParseMultipartForm(config.MaxUploadBytes); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "Failed to parse multipart form")
			return
		}
		files := r.MultipartForm.File["file"]
		if len(files) == 0 {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrNoFilesUploaded)
			return
		}

		mapping := map[string]string{}
		if raw := r.FormValue("mapping"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &mapping); err != nil {
				api.RespondWithError(w, http.StatusBadRequest, "Invalid mapping JSON")
				return
			}
		}

		persister := NewPersister(store)
		persister.OnProgress(func(stage string, percent int) {
			api.LogInfo("upload pipeline %s: %d%%", stage, percent)
		})

		uploads := make([]*UploadRecord, 0, len(files))
		for _, fileHeader := range files {
			file, err := fileHeader.Open()
			if err != nil {
				api.RespondWithError(w, http.StatusBadRequest, "Failed to open file: "+fileHeader.Filename)
				return
			}
			records, err := parseUploadFile(file, getFileExt(fileHeader.Filename))
			file.Close()
			if err != nil {
				api.RespondWithError(w, http.StatusBadRequest, "Invalid file: "+fileHeader.Filename)
				return
			}
			if len(records) == 0 {
				api.RespondWithError(w, http.StatusBadRequest, "Empty file: "+fileHeader.Filename)
				return
			}

			headers := records[0]
			validation := ValidateHeaders(headers)
			if !validation.IsValid && !mappingCovers(mapping, validation.MissingHeaders) {
				candidates := ResolveColumnMapping(validation.MissingHeaders, headers)
				w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(map[string]interface{}{
					"success":    false,
					"error":      "Missing required columns in " + fileHeader.Filename,
					"validation": validation,
					"candidates": candidates,
				})
				return
			}

			rawRows := recordsToRows(headers, records[1:])
			rows := make([]CampaignRow, 0, len(rawRows))
			for _, raw := range rawRows {
				rows = append(rows, NormalizeRow(raw, mapping))
			}

			rec, err := persister.Ingest(ctx, rows, UploadMeta{
				UserID:   userID,
				FileName: fileHeader.Filename,
				FileSize: fileHeader.Size,
			})
			if err != nil {
				api.RespondWithError(w, http.StatusInternalServerError,
					fmt.Sprintf("Failed to ingest %s: %v", fileHeader.Filename, err))
				return
			}
			uploads = append(uploads, rec)
		}

		api.RespondWithPayload(w, true, "", uploads)
	}
}

// mappingCovers reports whether every missing column is redirected by
// the supplied mapping.
func mappingCovers(mapping map[string]string, missing []string) bool {
	for _, name := range missing {
		if name == emptyFileSentinel {
			return false
		}
		if _, ok := mapping[name]; !ok {
			return false
		}
	}
	return true
}

// ListUploads returns the user's uploads, newest first, paged by the
// page/limit query params.
func ListUploads(store UploadStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		pagination, err := utils.ExtractPagination(r)
		if err != nil {
			api.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		uploads, err := store.ListUploads(ctx, api.GetUserIDFromCtx(ctx))
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrDB+": "+err.Error())
			return
		}
		pagination.SetPaginationStats(len(uploads))
		start, end := pagination.Bounds(len(uploads))
		api.RespondWithPayload(w, true, "", map[string]interface{}{
			"uploads":    uploads[start:end],
			"pagination": pagination,
		})
	}
}

// GetUploadDetail returns one upload record plus a bounded row preview.
func GetUploadDetail(store UploadStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var req struct {
			UserID   string `json:"user_id"`
			UploadID string `json:"upload_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UploadID == "" {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSON)
			return
		}
		userID := api.GetUserIDFromCtx(ctx)

		rec, err := store.GetUpload(ctx, userID, req.UploadID)
		if err != nil {
			api.RespondWithError(w, http.StatusNotFound, constants.ErrUploadNotFound)
			return
		}
		rows, err := store.FetchRows(ctx, userID, req.UploadID)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrDB+": "+err.Error())
			return
		}
		const previewLimit = 50
		if len(rows) > previewLimit {
			rows = rows[:previewLimit]
		}
		api.RespondWithPayload(w, true, "", map[string]interface{}{
			"upload":  rec,
			"preview": rows,
		})
	}
}

// DeleteUpload cascades: row records first, then the upload itself.
func DeleteUpload(store UploadStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var req struct {
			UserID   string `json:"user_id"`
			UploadID string `json:"upload_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UploadID == "" {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSON)
			return
		}

		deleted, err := store.DeleteUpload(ctx, api.GetUserIDFromCtx(ctx), req.UploadID)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrDB+": "+err.Error())
			return
		}
		if !deleted {
			api.RespondWithError(w, http.StatusNotFound, constants.ErrUploadNotFound)
			return
		}
		w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true})
	}
}

// ExportUpload streams the rows of one upload as a file download.
func ExportUpload(store UploadStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := api.GetUserIDFromCtx(ctx)
		uploadID := r.URL.Query().Get("upload_id")
		if uploadID == "" {
			api.RespondWithError(w, http.StatusBadRequest, "upload_id required")
			return
		}
		format := ExportFormat(r.URL.Query().Get("format"))
		if format == "" {
			format = FormatCSV
		}

		rec, err := store.GetUpload(ctx, userID, uploadID)
		if err != nil {
			api.RespondWithError(w, http.StatusNotFound, constants.ErrUploadNotFound)
			return
		}
		rows, err := store.FetchRows(ctx, userID, uploadID)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrDB+": "+err.Error())
			return
		}
		data, err := ExportRows(rows, format)
		if err != nil {
			api.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		w.Header().Set(constants.HeaderContentType, format.ContentType())
		w.Header().Set("Content-Disposition",
			fmt.Sprintf(`attachment; filename="%s_export.%s"`, rec.UploadID, format))
		w.Write(data)
	}
}

// DownloadTemplate serves the canonical CSV or XLSX template.
func DownloadTemplate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		format := r.URL.Query().Get("format")
		if format == "xlsx" {
			data, err := BuildXLSXTemplate()
			if err != nil {
				api.RespondWithError(w, http.StatusInternalServerError, err.Error())
				return
			}
			w.Header().Set(constants.HeaderContentType, FormatXLSX.ContentType())
			w.Header().Set("Content-Disposition", `attachment; filename="campaign_template.xlsx"`)
			w.Write(data)
			return
		}
		data, err := BuildCSVTemplate()
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set(constants.HeaderContentType, "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="campaign_template.csv"`)
		w.Write(data)
	}
}
