package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hibiki/admin"
	"hibiki/utils"
)

// AdminController exposes the staff-facing board and account management.
type AdminController struct {
	boards *admin.BoardService
	staff  *admin.StaffService
}

// NewAdminController creates a new AdminController instance.
func NewAdminController(boards *admin.BoardService, staff *admin.StaffService) *AdminController {
	return &AdminController{boards: boards, staff: staff}
}

// ListBoards returns one page of boards with content counters.
func (a *AdminController) ListBoards(ctx *gin.Context) {
	page, err := pageParam(ctx)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	result, err := a.boards.List(page)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Success(ctx, result)
}

// GetBoard returns one board with its settings.
func (a *AdminController) GetBoard(ctx *gin.Context) {
	board, err := a.boards.Get(ctx.Param("id"))
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Success(ctx, board)
}

// CreateBoard makes a new board.
func (a *AdminController) CreateBoard(ctx *gin.Context) {
	var input admin.BoardInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}
	board, err := a.boards.Create(&input)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Success(ctx, board)
}

// UpdateBoard rewrites a board and its settings.
func (a *AdminController) UpdateBoard(ctx *gin.Context) {
	var input admin.BoardInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}
	board, err := a.boards.Update(ctx.Param("id"), &input)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	a.invalidateBoard(board.URL)
	utils.Success(ctx, board)
}

// DeleteBoard removes a board with all its content.
func (a *AdminController) DeleteBoard(ctx *gin.Context) {
	board, err := a.boards.Get(ctx.Param("id"))
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	if err := a.boards.Delete(board.ID); err != nil {
		utils.Fail(ctx, err)
		return
	}
	a.invalidateBoard(board.URL)
	utils.Success(ctx, nil)
}

// ListStaff returns one page of staff accounts.
func (a *AdminController) ListStaff(ctx *gin.Context) {
	page, err := pageParam(ctx)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	result, err := a.staff.List(page)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Success(ctx, result)
}

// GetStaff returns one staff account.
func (a *AdminController) GetStaff(ctx *gin.Context) {
	member, err := a.staff.Get(ctx.Param("id"))
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Success(ctx, member)
}

// CreateStaff registers a staff account.
func (a *AdminController) CreateStaff(ctx *gin.Context) {
	var input admin.StaffInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}
	member, err := a.staff.Create(&input)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Success(ctx, member)
}

// UpdateStaff rewrites a staff account.
func (a *AdminController) UpdateStaff(ctx *gin.Context) {
	var input admin.StaffInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}
	member, err := a.staff.Update(ctx.Param("id"), &input)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Success(ctx, member)
}

// DeleteStaff removes a staff account.
func (a *AdminController) DeleteStaff(ctx *gin.Context) {
	if err := a.staff.Delete(ctx.Param("id")); err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Success(ctx, nil)
}

func (a *AdminController) invalidateBoard(url string) {
	utils.InvalidateByPrefix("page:" + url + ":")
	utils.InvalidateByPrefix("thread:" + url + ":")
}
