package forms

import (
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
)

const (
	// MaxImages is the most additional images one post may carry.
	MaxImages = 10
	// ImagePrefix prefixes every image sub-form field, e.g. "images-0-caption".
	ImagePrefix = "images"

	maxImageForms  = MaxImages + 1000
	maxUploadBytes = 10 << 20
)

type PostForm struct {
	Title   string `form:"title" validate:"required,min=5,max=200"`
	Content string `form:"content" validate:"required,min=50"`

	Image       *multipart.FileHeader `form:"-" validate:"-"`
	ClearImage  bool                  `form:"-" validate:"-"`
	ImageErrMsg string                `form:"-" validate:"-"`
}

var postMessages = map[string]string{
	"title":     "Title must be at least 5 characters long.",
	"title.max": "Ensure this value has at most 200 characters.",
	"content":   "Content must be at least 50 characters long.",
}

// ParsePostForm reads the post fields of r. Surrounding whitespace is
// trimmed before validation, so "   hi   " is a two character title.
func ParsePostForm(r *http.Request) *PostForm {
	f := &PostForm{
		Title:      strings.TrimSpace(r.PostFormValue("title")),
		Content:    strings.TrimSpace(r.PostFormValue("content")),
		ClearImage: r.PostFormValue("image-clear") != "",
	}
	if header := fileHeader(r, "image"); header != nil {
		f.Image = header
		f.ImageErrMsg = checkImageFile(header)
	}
	return f
}

func (f *PostForm) Validate() Errors {
	errs := check(f, postMessages)
	if f.ImageErrMsg != "" {
		errs.Add("image", f.ImageErrMsg)
	}
	return errs
}

const invalidChoice = "Select a valid choice. That choice is not one of the available choices."

// ImageForm is one additional-image row. ID is zero for new rows.
type ImageForm struct {
	Index   int                   `form:"-" validate:"-"`
	ID      uint                  `form:"id" validate:"-"`
	Caption string                `form:"caption" validate:"max=200"`
	Order   int                   `form:"order" validate:"gte=0,lte=100"`
	Delete  bool                  `form:"delete" validate:"-"`
	File    *multipart.FileHeader `form:"image" validate:"-"`

	orderErr bool
	fileErr  string
}

// Empty reports whether a new row was left untouched and should be ignored.
func (f *ImageForm) Empty() bool {
	return f.ID == 0 && f.File == nil && f.Caption == "" && f.Order == 0 && !f.orderErr
}

func (f *ImageForm) Validate() Errors {
	errs := check(f, nil)
	if f.orderErr {
		errs["order"] = "Enter a whole number."
	}
	if f.fileErr != "" {
		errs.Add("image", f.fileErr)
	}
	if f.ID == 0 && f.File == nil {
		errs.Add("image", "This field is required.")
	}
	return errs
}

// ImageFormSet is the list of image rows submitted with a post.
type ImageFormSet struct {
	Forms  []*ImageForm
	Errors []Errors
	// NonFormError holds set-level problems such as too many images.
	NonFormError string
}

// ParseImageFormSet reads rows images-0..images-(TOTAL_FORMS-1) from r.
func ParseImageFormSet(r *http.Request) *ImageFormSet {
	set := &ImageFormSet{}
	total, _ := strconv.Atoi(r.PostFormValue(ImagePrefix + "-TOTAL_FORMS"))
	if total < 0 {
		total = 0
	}
	if total > maxImageForms {
		set.NonFormError = "Please submit at most 10 images."
		total = maxImageForms
	}

	for i := 0; i < total; i++ {
		key := func(name string) string {
			return ImagePrefix + "-" + strconv.Itoa(i) + "-" + name
		}
		f := &ImageForm{
			Index:   i,
			Caption: strings.TrimSpace(r.PostFormValue(key("caption"))),
			Delete:  r.PostFormValue(key("delete")) != "",
			File:    fileHeader(r, key("image")),
		}
		if id, err := strconv.ParseUint(r.PostFormValue(key("id")), 10, 64); err == nil {
			f.ID = uint(id)
		}
		if raw := strings.TrimSpace(r.PostFormValue(key("order"))); raw != "" {
			order, err := strconv.Atoi(raw)
			if err != nil {
				f.orderErr = true
			}
			f.Order = order
		}
		if f.File != nil {
			f.fileErr = checkImageFile(f.File)
		}
		set.Forms = append(set.Forms, f)
	}
	return set
}

// Active returns the rows that will be saved: neither empty nor deleted.
func (s *ImageFormSet) Active() []*ImageForm {
	active := make([]*ImageForm, 0, len(s.Forms))
	for _, f := range s.Forms {
		if f.Delete || f.Empty() {
			continue
		}
		active = append(active, f)
	}
	return active
}

// Deleted returns the existing rows marked for deletion.
func (s *ImageFormSet) Deleted() []uint {
	var ids []uint
	for _, f := range s.Forms {
		if f.Delete && f.ID != 0 {
			ids = append(ids, f.ID)
		}
	}
	return ids
}

// Validate fills Errors (one entry per row) and reports whether the whole
// set is valid. known holds the ids of the images already attached to the
// post; rows naming any other id are rejected, deleted ones included.
func (s *ImageFormSet) Validate(known []uint) bool {
	owned := make(map[uint]bool, len(known))
	for _, id := range known {
		owned[id] = true
	}

	valid := s.NonFormError == ""
	s.Errors = make([]Errors, len(s.Forms))
	for i, f := range s.Forms {
		s.Errors[i] = Errors{}
		if f.ID != 0 && !owned[f.ID] {
			s.Errors[i].Add("id", invalidChoice)
			valid = false
			continue
		}
		if f.Delete || f.Empty() {
			continue
		}
		s.Errors[i] = f.Validate()
		if s.Errors[i].Any() {
			valid = false
		}
	}
	if len(s.Active()) > MaxImages {
		s.NonFormError = "Please submit at most 10 images."
		valid = false
	}
	return valid
}

func fileHeader(r *http.Request, field string) *multipart.FileHeader {
	if r.MultipartForm == nil || r.MultipartForm.File == nil {
		return nil
	}
	headers := r.MultipartForm.File[field]
	if len(headers) == 0 || headers[0].Size == 0 {
		return nil
	}
	return headers[0]
}

func checkImageFile(header *multipart.FileHeader) string {
	if !strings.HasPrefix(header.Header.Get("Content-Type"), "image/") {
		return "Upload a valid image. The file you uploaded was either not an image or a corrupted image."
	}
	if header.Size > maxUploadBytes {
		return "Image size must not exceed 10MB."
	}
	return ""
}
