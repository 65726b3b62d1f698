package handlers

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"inkpost/internal/forms"
	"inkpost/internal/logs"
	"inkpost/internal/middleware"
	"inkpost/internal/models"
	"inkpost/internal/services"
	"inkpost/internal/storage"
	"inkpost/internal/utils"
)

// blank image rows offered on a new or edited post
const extraImageRows = 3

const maxMemory = 32 << 20

type PostHandler struct {
	store storage.ImageStore
}

func NewPostHandler(store storage.ImageStore) *PostHandler {
	return &PostHandler{store: store}
}

// imageRow is one additional-image line of the post form.
type imageRow struct {
	Index   int
	ID      uint
	Image   string
	Caption string
	Order   int
	Delete  bool
	Errors  forms.Errors
}

func (h *PostHandler) List(c *gin.Context) {
	page, posts, err := services.ListPosts(c.Query("page"))
	if err != nil {
		ServerError(c, err)
		return
	}
	Render(c, http.StatusOK, "post/list.html", gin.H{
		"Heading": "Latest posts",
		"Posts":   posts,
		"Page":    page,
		"BaseURL": "/",
	})
}

func (h *PostHandler) MyPosts(c *gin.Context) {
	user := middleware.CurrentUser(c)
	page, posts, err := services.UserPosts(user.ID, c.Query("page"))
	if err != nil {
		ServerError(c, err)
		return
	}
	Render(c, http.StatusOK, "post/my_posts.html", gin.H{
		"Posts":   posts,
		"Page":    page,
		"BaseURL": "/my-posts/",
	})
}

func (h *PostHandler) Detail(c *gin.Context) {
	post, ok := h.loadPost(c)
	if !ok {
		return
	}
	renderPostDetail(c, http.StatusOK, post, "", forms.Errors{})
}

// renderPostDetail shows a post with its root comments. content and errs
// refill the comment box after a failed submission.
func renderPostDetail(c *gin.Context, code int, post *models.Post, content string, errs forms.Errors) {
	comments, err := services.RootComments(post.ID)
	if err != nil {
		ServerError(c, err)
		return
	}

	user := middleware.CurrentUser(c)
	reaction := ""
	if user != nil {
		reaction = services.UserReaction(user.ID, post.ID)
	}

	Render(c, code, "post/detail.html", gin.H{
		"Post":           post,
		"Comments":       comments,
		"UserReaction":   reaction,
		"CanModify":      services.CanModifyPost(user, post),
		"CommentContent": content,
		"CommentErrors":  errs,
	})
}

func (h *PostHandler) ShowCreate(c *gin.Context) {
	h.renderForm(c, http.StatusOK, nil, &forms.PostForm{}, forms.Errors{}, blankRows(0, extraImageRows), "")
}

func (h *PostHandler) Create(c *gin.Context) {
	user := middleware.CurrentUser(c)

	postForm, imageSet, ok := h.parseForm(c, nil)
	if !ok {
		return
	}

	stored, in, err := h.storeUploads(c.Request.Context(), postForm, imageSet)
	if err != nil {
		h.discard(c.Request.Context(), stored)
		Flash(c, LevelError, fmt.Sprintf("There was an error saving your post: %v", err))
		h.renderForm(c, http.StatusInternalServerError, nil, postForm, forms.Errors{}, rowsFromSet(imageSet, nil), "")
		return
	}

	post, err := services.CreatePost(user.ID, in)
	if err != nil {
		h.discard(c.Request.Context(), stored)
		h.saveFailed(c, nil, postForm, imageSet, err)
		return
	}

	Flash(c, LevelSuccess, "Your blog post has been created successfully!")
	redirect(c, postURL(post.ID))
}

func (h *PostHandler) ShowEdit(c *gin.Context) {
	post, ok := h.ownPost(c, "You can only edit your own posts.")
	if !ok {
		return
	}
	postForm := &forms.PostForm{Title: post.Title, Content: post.Content}
	h.renderForm(c, http.StatusOK, post, postForm, forms.Errors{}, existingRows(post), "")
}

func (h *PostHandler) Update(c *gin.Context) {
	post, ok := h.ownPost(c, "You can only edit your own posts.")
	if !ok {
		return
	}

	postForm, imageSet, ok := h.parseForm(c, post)
	if !ok {
		return
	}

	stored, in, err := h.storeUploads(c.Request.Context(), postForm, imageSet)
	if err != nil {
		h.discard(c.Request.Context(), stored)
		Flash(c, LevelError, fmt.Sprintf("There was an error updating your post: %v", err))
		h.renderForm(c, http.StatusInternalServerError, post, postForm, forms.Errors{}, rowsFromSet(imageSet, post), "")
		return
	}

	obsolete, err := services.UpdatePost(post, in)
	if err != nil {
		h.discard(c.Request.Context(), stored)
		h.saveFailed(c, post, postForm, imageSet, err)
		return
	}
	h.discard(c.Request.Context(), obsolete)

	Flash(c, LevelSuccess, "Your blog post has been updated successfully!")
	redirect(c, postURL(post.ID))
}

func (h *PostHandler) ShowDelete(c *gin.Context) {
	post, ok := h.ownPost(c, "You can only delete your own posts.")
	if !ok {
		return
	}
	Render(c, http.StatusOK, "post/delete.html", gin.H{"Post": post})
}

func (h *PostHandler) Delete(c *gin.Context) {
	post, ok := h.ownPost(c, "You can only delete your own posts.")
	if !ok {
		return
	}

	keys, err := services.DeletePost(post)
	if err != nil {
		ServerError(c, err)
		return
	}
	h.discard(c.Request.Context(), keys)

	Flash(c, LevelSuccess, fmt.Sprintf("Your post \"%s\" has been deleted successfully.", post.Title))
	redirect(c, "/")
}

// loadPost resolves :id, rendering the not found page when it fails.
func (h *PostHandler) loadPost(c *gin.Context) (*models.Post, bool) {
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		NotFound(c)
		return nil, false
	}
	post, err := services.GetPost(id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			NotFound(c)
		} else {
			ServerError(c, err)
		}
		return nil, false
	}
	return post, true
}

// ownPost loads the post and checks the current user wrote it.
func (h *PostHandler) ownPost(c *gin.Context, denied string) (*models.Post, bool) {
	post, ok := h.loadPost(c)
	if !ok {
		return nil, false
	}
	if !services.CanModifyPost(middleware.CurrentUser(c), post) {
		redirectWithError(c, postURL(post.ID), denied)
		return nil, false
	}
	return post, true
}

// parseForm reads and validates the post and its image rows. On failure it
// renders the form with errors and returns false.
func (h *PostHandler) parseForm(c *gin.Context, post *models.Post) (*forms.PostForm, *forms.ImageFormSet, bool) {
	if err := c.Request.ParseMultipartForm(maxMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		RenderError(c, http.StatusBadRequest, "The submitted form could not be read.")
		return nil, nil, false
	}

	postForm := forms.ParsePostForm(c.Request)
	imageSet := forms.ParseImageFormSet(c.Request)
	errs := postForm.Validate()
	imagesValid := imageSet.Validate(imageIDs(post))
	if errs.Any() || !imagesValid {
		Flash(c, LevelError, "Please correct the errors below.")
		h.renderForm(c, http.StatusBadRequest, post, postForm, errs, rowsFromSet(imageSet, post), imageSet.NonFormError)
		return nil, nil, false
	}
	return postForm, imageSet, true
}

// storeUploads writes the submitted files to the image store. The stored
// keys are returned even on error so the caller can remove them.
func (h *PostHandler) storeUploads(ctx context.Context, postForm *forms.PostForm, imageSet *forms.ImageFormSet) ([]string, services.PostInput, error) {
	var stored []string
	in := services.PostInput{
		Title:        postForm.Title,
		Content:      postForm.Content,
		ClearImage:   postForm.ClearImage,
		DeleteImages: imageSet.Deleted(),
	}

	if postForm.Image != nil {
		key, err := h.save(ctx, storage.FolderPrimary, postForm.Image)
		if err != nil {
			return stored, in, err
		}
		stored = append(stored, key)
		in.Image = key
	}

	for _, f := range imageSet.Active() {
		img := services.ImageInput{ID: f.ID, Caption: f.Caption, Order: uint(f.Order)}
		if f.File != nil {
			key, err := h.save(ctx, storage.FolderAdditional, f.File)
			if err != nil {
				return stored, in, err
			}
			stored = append(stored, key)
			img.Image = key
		}
		in.Images = append(in.Images, img)
	}
	return stored, in, nil
}

func (h *PostHandler) save(ctx context.Context, folder string, header *multipart.FileHeader) (string, error) {
	file, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()
	return h.store.Save(ctx, folder, header.Filename, header.Header.Get("Content-Type"), file)
}

// discard removes stored files, logging failures.
func (h *PostHandler) discard(ctx context.Context, keys []string) {
	for _, key := range keys {
		if key == "" {
			continue
		}
		if err := h.store.Delete(ctx, key); err != nil {
			logs.Warn.Printf("remove image %s: %v", key, err)
		}
	}
}

func (h *PostHandler) saveFailed(c *gin.Context, post *models.Post, postForm *forms.PostForm, imageSet *forms.ImageFormSet, err error) {
	switch {
	case errors.Is(err, services.ErrTooManyImages):
		h.renderForm(c, http.StatusBadRequest, post, postForm, forms.Errors{}, rowsFromSet(imageSet, post),
			fmt.Sprintf("Please submit at most %d images.", forms.MaxImages))
		return
	case errors.Is(err, services.ErrInvalidImage):
		Flash(c, LevelError, "Please correct the errors below.")
		h.renderForm(c, http.StatusBadRequest, post, postForm, forms.Errors{}, rowsFromSet(imageSet, post),
			"One of the submitted images is not attached to this post.")
		return
	}
	logs.Error.Printf("save post: %v", err)
	verb := "saving"
	if post != nil {
		verb = "updating"
	}
	Flash(c, LevelError, fmt.Sprintf("There was an error %s your post: %v", verb, err))
	h.renderForm(c, http.StatusInternalServerError, post, postForm, forms.Errors{}, rowsFromSet(imageSet, post), "")
}

func (h *PostHandler) renderForm(c *gin.Context, code int, post *models.Post, postForm *forms.PostForm, errs forms.Errors, rows []imageRow, imageError string) {
	data := gin.H{
		"Title":      postForm.Title,
		"Content":    postForm.Content,
		"Errors":     errs,
		"ImageRows":  rows,
		"ImageError": imageError,
	}
	if post == nil {
		data["Heading"] = "Create a new post"
		data["Action"] = "/create/"
		data["Submit"] = "Publish"
		data["Cancel"] = "/"
	} else {
		data["Heading"] = "Edit post"
		data["Action"] = postURL(post.ID) + "edit/"
		data["Submit"] = "Save changes"
		data["Cancel"] = postURL(post.ID)
		data["CurrentImage"] = post.Image
		data["Post"] = post
	}
	Render(c, code, "post/form.html", data)
}

// imageIDs lists the images a post already owns. A new post owns none.
func imageIDs(post *models.Post) []uint {
	if post == nil {
		return nil
	}
	ids := make([]uint, len(post.Images))
	for i, img := range post.Images {
		ids[i] = img.ID
	}
	return ids
}

func blankRows(start, n int) []imageRow {
	rows := make([]imageRow, n)
	for i := range rows {
		rows[i] = imageRow{Index: start + i, Errors: forms.Errors{}}
	}
	return rows
}

func existingRows(post *models.Post) []imageRow {
	rows := make([]imageRow, 0, len(post.Images)+extraImageRows)
	for i, img := range post.Images {
		rows = append(rows, imageRow{
			Index:   i,
			ID:      img.ID,
			Image:   img.Image,
			Caption: img.Caption,
			Order:   int(img.Order),
			Errors:  forms.Errors{},
		})
	}
	extra := extraImageRows
	if room := forms.MaxImages - len(post.Images); room < extra {
		extra = room
	}
	if extra > 0 {
		rows = append(rows, blankRows(len(rows), extra)...)
	}
	return rows
}

// rowsFromSet rebuilds the form rows from a submission so the user keeps
// what they typed.
func rowsFromSet(set *forms.ImageFormSet, post *models.Post) []imageRow {
	images := map[uint]string{}
	if post != nil {
		for _, img := range post.Images {
			images[img.ID] = img.Image
		}
	}

	rows := make([]imageRow, len(set.Forms))
	for i, f := range set.Forms {
		errs := forms.Errors{}
		if i < len(set.Errors) {
			errs = set.Errors[i]
		}
		id := f.ID
		if _, ok := images[id]; !ok {
			id = 0
		}
		rows[i] = imageRow{
			Index:   f.Index,
			ID:      id,
			Image:   images[id],
			Caption: f.Caption,
			Order:   f.Order,
			Delete:  f.Delete,
			Errors:  errs,
		}
	}
	if len(rows) == 0 {
		return blankRows(0, extraImageRows)
	}
	return rows
}
