package handler

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strings"

	"github.com/staysense/predictor/internal/api/response"
	"github.com/staysense/predictor/internal/tabular"
	"github.com/staysense/predictor/internal/wordcloud"
)

// WordcloudService renders word-cloud images.
type WordcloudService interface {
	GenerateFromModel(ctx context.Context) (string, error)
	Append(ctx context.Context, userID, text string) (string, error)
}

// NewWordcloudHandler returns the handler for POST /wordcloud. It accepts a
// JSON body {text, use_model, user_id} or a multipart form with text and/or
// a file whose text columns are contributed.
func NewWordcloudHandler(svc WordcloudService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decodeWordcloudRequest(w, r)
		if !ok {
			return
		}

		if req.useModel {
			url, err := svc.GenerateFromModel(r.Context())
			if err != nil {
				response.Error(w, http.StatusBadGateway, "STORAGE_ERROR",
					"Failed to generate the word cloud image", nil)
				return
			}
			response.JSON(w, http.StatusOK, map[string]any{"image_url": url})
			return
		}

		url, err := svc.Append(r.Context(), req.userID, req.text)
		if err != nil {
			if errors.Is(err, wordcloud.ErrNoText) {
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
					"No text provided", nil)
				return
			}
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to generate the word cloud image", nil)
			return
		}

		response.JSON(w, http.StatusOK, map[string]any{"image_url": url})
	}
}

type wordcloudRequest struct {
	text     string
	userID   string
	useModel bool
}

func decodeWordcloudRequest(w http.ResponseWriter, r *http.Request) (wordcloudRequest, bool) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		return decodeWordcloudForm(w, r)
	}

	var body struct {
		Text     string `json:"text"`
		UseModel *bool  `json:"use_model"`
		UserID   string `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
		return wordcloudRequest{}, false
	}

	// use_model defaults to true when the caller sends no text at all.
	useModel := body.Text == ""
	if body.UseModel != nil {
		useModel = *body.UseModel
	}

	return wordcloudRequest{text: body.Text, userID: body.UserID, useModel: useModel}, true
}

func decodeWordcloudForm(w http.ResponseWriter, r *http.Request) (wordcloudRequest, bool) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
			"Invalid multipart form", nil)
		return wordcloudRequest{}, false
	}

	req := wordcloudRequest{
		text:     r.FormValue("text"),
		userID:   r.FormValue("user_id"),
		useModel: r.FormValue("use_model") == "true",
	}

	if file, header, err := r.FormFile("file"); err == nil {
		defer file.Close()
		table, err := tabular.Parse(header.Filename, file)
		if err != nil {
			switch {
			case errors.Is(err, tabular.ErrUnsupportedFormat):
				response.Error(w, http.StatusBadRequest, "UNSUPPORTED_FILE_FORMAT",
					"Only .csv, .xls and .xlsx files are supported", nil)
			default:
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
					"The uploaded file could not be parsed", nil)
			}
			return wordcloudRequest{}, false
		}
		req.text = strings.TrimSpace(req.text + " " + table.TextContent())
	}

	return req, true
}
