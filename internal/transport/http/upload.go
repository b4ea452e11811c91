package http

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	apierrors "enrollrank/internal/errors"
	"enrollrank/internal/services"
	"enrollrank/internal/validation"
)

// Multipart form field names shared by the dashboard and the API.
const (
	FieldFile       = "file"
	FieldPeriods    = "periods"
	FieldMinTotal   = "min_total"
	FieldCourseType = "course_type"
	FieldTopK       = "top_k"
)

// multipartMemory is the part of a form kept in memory before spilling the
// upload to a temporary file.
const multipartMemory = 8 << 20

// rankingForm is a parsed ranking upload. Close releases the upload.
type rankingForm struct {
	Request services.RankingRequest
	File    multipart.File
	Name    string
	form    *multipart.Form
}

// Close closes the uploaded file and removes any temporary files.
func (f *rankingForm) Close() error {
	err := f.File.Close()
	if f.form != nil {
		err = errors.Join(err, f.form.RemoveAll())
	}
	return err
}

// parseRankingForm reads a multipart ranking request of at most maxBytes and
// rejects uploads whose content is not an .xlsx container.
// Absent fields take their value from defaults, except periods: an absent
// or empty period list is passed on as empty.
func parseRankingForm(w http.ResponseWriter, r *http.Request, maxBytes int64, defaults services.RankingRequest) (*rankingForm, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, err
		}
		return nil, apierrors.InvalidRequestWithError(err)
	}

	req := services.RankingRequest{
		Periods:     splitValues(r.MultipartForm.Value[FieldPeriods]),
		MinTotal:    defaults.MinTotal,
		CourseTypes: defaults.CourseTypes,
		TopK:        defaults.TopK,
	}

	if v := formValue(r, FieldMinTotal); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			r.MultipartForm.RemoveAll()
			return nil, apierrors.ErrValidation(FieldMinTotal, fmt.Sprintf("%s must be a whole number", FieldMinTotal))
		}
		req.MinTotal = n
	}
	if v := formValue(r, FieldTopK); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			r.MultipartForm.RemoveAll()
			return nil, apierrors.ErrValidation(FieldTopK, fmt.Sprintf("%s must be a whole number", FieldTopK))
		}
		req.TopK = n
	}
	if values, ok := r.MultipartForm.Value[FieldCourseType]; ok {
		req.CourseTypes = nonEmpty(values)
	}

	file, header, err := r.FormFile(FieldFile)
	if err != nil {
		r.MultipartForm.RemoveAll()
		if errors.Is(err, http.ErrMissingFile) {
			return nil, apierrors.ErrMissingFile
		}
		return nil, apierrors.InvalidRequestWithError(err)
	}

	// Without periods nothing is read, so the upload is not inspected.
	if len(req.Periods) == 0 {
		return &rankingForm{Request: req, File: file, Name: header.Filename, form: r.MultipartForm}, nil
	}
	if err := validation.SniffWorkbook(header.Filename, file); err != nil {
		file.Close()
		r.MultipartForm.RemoveAll()
		return nil, err
	}

	return &rankingForm{Request: req, File: file, Name: header.Filename, form: r.MultipartForm}, nil
}

func formValue(r *http.Request, field string) string {
	values := r.MultipartForm.Value[field]
	if len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[0])
}

// splitValues accepts repeated fields as well as comma separated lists.
func splitValues(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// nonEmpty keeps course types verbatim, since they are matched exactly
// against table values, dropping only blank entries.
func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}
