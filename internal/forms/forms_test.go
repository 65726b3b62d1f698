package forms

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func formRequest(values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

type upload struct {
	field, name, contentType string
	body                     []byte
}

func multipartRequest(t *testing.T, values map[string]string, files ...upload) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range values {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", `form-data; name="`+f.field+`"; filename="`+f.name+`"`)
		h.Set("Content-Type", f.contentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(f.body)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(32<<20))
	return req
}

func TestPostFormValidate(t *testing.T) {
	long := strings.Repeat("a", 50)
	tests := []struct {
		name      string
		title     string
		content   string
		wantField string
	}{
		{"valid", "Hello", long, ""},
		{"title trimmed too short", "   hi   ", long, "title"},
		{"title too long", strings.Repeat("t", 201), long, "title"},
		{"content too short", "Hello world", "short", "content"},
		{"content only spaces", "Hello world", strings.Repeat(" ", 60), "content"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := ParsePostForm(formRequest(url.Values{"title": {tt.title}, "content": {tt.content}}))
			errs := f.Validate()
			if tt.wantField == "" {
				assert.False(t, errs.Any(), "%v", errs)
				return
			}
			assert.Contains(t, errs, tt.wantField)
		})
	}
}

func TestPostFormMessages(t *testing.T) {
	f := ParsePostForm(formRequest(url.Values{"title": {"hey"}, "content": {"tiny"}}))
	errs := f.Validate()
	assert.Equal(t, "Title must be at least 5 characters long.", errs.Get("title"))
	assert.Equal(t, "Content must be at least 50 characters long.", errs.Get("content"))
}

func TestPostFormRejectsNonImage(t *testing.T) {
	req := multipartRequest(t, map[string]string{
		"title":   "A title",
		"content": strings.Repeat("c", 60),
	}, upload{"image", "notes.txt", "text/plain", []byte("hello")})

	errs := ParsePostForm(req).Validate()
	assert.Contains(t, errs, "image")
}

func imageFields(total int, rows map[int]map[string]string) map[string]string {
	values := map[string]string{ImagePrefix + "-TOTAL_FORMS": strconv.Itoa(total)}
	for i, row := range rows {
		for k, v := range row {
			values[ImagePrefix+"-"+strconv.Itoa(i)+"-"+k] = v
		}
	}
	return values
}

func TestImageFormSetSkipsEmptyRows(t *testing.T) {
	req := multipartRequest(t, imageFields(3, map[int]map[string]string{
		1: {"caption": "second", "order": "2"},
	}), upload{ImagePrefix + "-1-image", "b.png", "image/png", []byte("png")})

	set := ParseImageFormSet(req)
	require.True(t, set.Validate(nil))
	active := set.Active()
	require.Len(t, active, 1)
	assert.Equal(t, "second", active[0].Caption)
	assert.Equal(t, 2, active[0].Order)
}

func TestImageFormSetRowErrors(t *testing.T) {
	req := multipartRequest(t, imageFields(3, map[int]map[string]string{
		0: {"caption": "no file"},
		1: {"id": "7", "order": "101"},
		2: {"id": "8", "caption": strings.Repeat("x", 201)},
	}))

	set := ParseImageFormSet(req)
	assert.False(t, set.Validate([]uint{7, 8}))
	assert.Contains(t, set.Errors[0], "image")
	assert.Contains(t, set.Errors[1], "order")
	assert.Contains(t, set.Errors[2], "caption")
}

func TestImageFormSetUnknownIDs(t *testing.T) {
	req := multipartRequest(t, imageFields(3, map[int]map[string]string{
		0: {"id": "99", "caption": "no file here"},
		1: {"id": "42", "delete": "on"},
		2: {"id": "5", "caption": "kept"},
	}))

	set := ParseImageFormSet(req)
	assert.False(t, set.Validate([]uint{5}))
	assert.Equal(t, "Select a valid choice. That choice is not one of the available choices.", set.Errors[0].Get("id"))
	assert.NotEmpty(t, set.Errors[1].Get("id"))
	assert.False(t, set.Errors[2].Any())

	// a new post owns no images, so any id is rejected
	set = ParseImageFormSet(req)
	assert.False(t, set.Validate(nil))
	assert.NotEmpty(t, set.Errors[2].Get("id"))
}

func TestImageFormSetLimit(t *testing.T) {
	rows := map[int]map[string]string{}
	var files []upload
	for i := 0; i < MaxImages+1; i++ {
		rows[i] = map[string]string{"order": strconv.Itoa(i)}
		files = append(files, upload{ImagePrefix + "-" + strconv.Itoa(i) + "-image", "x.png", "image/png", []byte("png")})
	}
	req := multipartRequest(t, imageFields(MaxImages+1, rows), files...)

	set := ParseImageFormSet(req)
	assert.False(t, set.Validate(nil))
	assert.NotEmpty(t, set.NonFormError)
}

func TestImageFormSetDeleteDoesNotCount(t *testing.T) {
	rows := map[int]map[string]string{}
	for i := 0; i < MaxImages+1; i++ {
		rows[i] = map[string]string{"id": strconv.Itoa(i + 1)}
	}
	rows[0]["delete"] = "on"
	req := multipartRequest(t, imageFields(MaxImages+1, rows))

	known := make([]uint, MaxImages+1)
	for i := range known {
		known[i] = uint(i + 1)
	}
	set := ParseImageFormSet(req)
	assert.True(t, set.Validate(known))
	assert.Equal(t, []uint{1}, set.Deleted())
	assert.Len(t, set.Active(), MaxImages)
}

func TestCommentFormValidate(t *testing.T) {
	f := ParseCommentForm(formRequest(url.Values{"content": {"  ok  "}}))
	assert.Equal(t, "Comment must be at least 5 characters long.", f.Validate().Get("content"))

	f = ParseCommentForm(formRequest(url.Values{"content": {"Nice post!"}, "parent_id": {"3"}}))
	assert.False(t, f.Validate().Any())
	assert.Equal(t, "3", f.ParentID)
}

func TestRegisterFormValidate(t *testing.T) {
	tests := []struct {
		name      string
		values    url.Values
		wantField string
	}{
		{"valid", url.Values{"username": {"alice"}, "password1": {"s3cret-pass"}, "password2": {"s3cret-pass"}}, ""},
		{"mismatch", url.Values{"username": {"alice"}, "password1": {"s3cret-pass"}, "password2": {"other-pass"}}, "password2"},
		{"short", url.Values{"username": {"alice"}, "password1": {"abc"}, "password2": {"abc"}}, "password1"},
		{"numeric", url.Values{"username": {"alice"}, "password1": {"12345678"}, "password2": {"12345678"}}, "password1"},
		{"bad username", url.Values{"username": {"al ice"}, "password1": {"s3cret-pass"}, "password2": {"s3cret-pass"}}, "username"},
		{"missing username", url.Values{"password1": {"s3cret-pass"}, "password2": {"s3cret-pass"}}, "username"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ParseRegisterForm(formRequest(tt.values)).Validate()
			if tt.wantField == "" {
				assert.False(t, errs.Any(), "%v", errs)
				return
			}
			assert.Contains(t, errs, tt.wantField)
		})
	}
}
