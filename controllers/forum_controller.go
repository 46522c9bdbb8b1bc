package controllers

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"hibiki/errs"
	"hibiki/forum"
	"hibiki/storage"
	"hibiki/utils"
)

// ForumController exposes the public posting and reading endpoints.
type ForumController struct {
	forum *forum.Service
}

// NewForumController creates a new ForumController instance.
func NewForumController(svc *forum.Service) *ForumController {
	return &ForumController{forum: svc}
}

// GetBoardPage renders one page of a board's thread listing, cached in Redis.
func (f *ForumController) GetBoardPage(ctx *gin.Context) {
	url := ctx.Param("url")
	page, err := pageParam(ctx)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}

	cacheKey := boardCacheKey(url, page)
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json; charset=utf-8", b)
		return
	}

	result, err := f.forum.ListBoardPage(url, page)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	if page > 0 && len(result.Threads) == 0 {
		utils.Fail(ctx, errs.NotFound("page %d was not found on /%s/", page, url))
		return
	}

	utils.CacheSetJSON(cacheKey, utils.JSONResponse{Code: 0, Message: "success", Data: result}, 0)
	utils.Success(ctx, result)
}

// GetThread renders a full thread view, cached in Redis.
func (f *ForumController) GetThread(ctx *gin.Context) {
	url := ctx.Param("url")
	number, err := numberParam(ctx)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}

	cacheKey := threadCacheKey(url, number)
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json; charset=utf-8", b)
		return
	}

	result, err := f.forum.GetThread(url, number)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}

	utils.CacheSetJSON(cacheKey, utils.JSONResponse{Code: 0, Message: "success", Data: result}, 0)
	utils.Success(ctx, result)
}

// CreateThread accepts a multipart post form and opens a new thread.
func (f *ForumController) CreateThread(ctx *gin.Context) {
	url := ctx.Param("url")
	payload, err := payloadFromForm(ctx)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}

	thread, err := f.forum.CreateThread(url, payload, ctx.ClientIP())
	if err != nil {
		utils.Fail(ctx, err)
		return
	}

	f.invalidateBoard(url)
	utils.Success(ctx, gin.H{"number_on_board": thread.NumberOnBoard})
}

// CreateReply accepts a multipart post form and appends a reply to a thread.
func (f *ForumController) CreateReply(ctx *gin.Context) {
	url := ctx.Param("url")
	number, err := numberParam(ctx)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	payload, err := payloadFromForm(ctx)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}

	reply, err := f.forum.CreateReply(url, number, payload, ctx.ClientIP())
	if err != nil {
		utils.Fail(ctx, err)
		return
	}

	f.invalidateBoard(url)
	utils.Success(ctx, gin.H{"number_on_board": reply.NumberOnBoard})
}

// DeleteComments removes the poster's own comments by number, gated on the
// deletion password given at posting time.
func (f *ForumController) DeleteComments(ctx *gin.Context) {
	url := ctx.Param("url")

	var req struct {
		Numbers  []int  `json:"delete" binding:"required,min=1"`
		Password string `json:"password" binding:"required"`
		FileOnly bool   `json:"fileOnly"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	if err := f.forum.DeleteComments(url, req.Numbers, req.Password, req.FileOnly); err != nil {
		utils.Fail(ctx, err)
		return
	}

	f.invalidateBoard(url)
	utils.Success(ctx, nil)
}

func (f *ForumController) invalidateBoard(url string) {
	utils.InvalidateByPrefix("page:" + url + ":")
	utils.InvalidateByPrefix("thread:" + url + ":")
}

func boardCacheKey(url string, page int) string {
	return fmt.Sprintf("page:%s:%d", url, page)
}

func threadCacheKey(url string, number int) string {
	return fmt.Sprintf("thread:%s:%d", url, number)
}

func pageParam(ctx *gin.Context) (int, error) {
	raw := ctx.DefaultQuery("page", "0")
	page, err := strconv.Atoi(raw)
	if err != nil || page < 0 {
		return 0, errs.BadRequest("invalid page number %q", raw)
	}
	return page, nil
}

func numberParam(ctx *gin.Context) (int, error) {
	raw := ctx.Param("number")
	number, err := strconv.Atoi(raw)
	if err != nil || number < 1 {
		return 0, errs.BadRequest("invalid thread number %q", raw)
	}
	return number, nil
}

// payloadFromForm reads the multipart post form. The file is optional and
// stays unread until the pipeline decides to store it.
func payloadFromForm(ctx *gin.Context) (*forum.Payload, error) {
	payload := &forum.Payload{
		Name:     ctx.PostForm("name"),
		Email:    ctx.PostForm("email"),
		Subject:  ctx.PostForm("subject"),
		Comment:  ctx.PostForm("comment"),
		Password: ctx.PostForm("password"),
	}

	// Absent file part means a text-only post
	fh, err := ctx.FormFile("file")
	if err != nil {
		return payload, nil
	}

	payload.File = &storage.Upload{
		Filename: fh.Filename,
		Size:     fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
	return payload, nil
}
