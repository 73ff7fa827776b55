package handlers

import (
	"net/http"

	"mediaalbums/models"
	"mediaalbums/moderation"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

type ApproveRequest struct {
	IDs []uint64 `form:"ids" binding:"required"`
}

type ApproveResponse struct {
	MultiResponse
	Approved []ItemInfo `json:"approved"`
}

func (a *API) PendingList(c *gin.Context, user *models.User) {
	photos, err := moderation.Pending(a.DB)
	if err != nil {
		WriteError(c, err)
		return
	}
	result := make([]PendingInfo, 0, len(photos))
	for i := range photos {
		result = append(result, NewPendingInfo(&photos[i]))
	}
	c.JSON(http.StatusOK, result)
}

// PendingApprove moves the selected photos to the user photos album. Ids
// that could not be approved are listed in "failed".
func (a *API) PendingApprove(c *gin.Context, user *models.User) {
	req := ApproveRequest{}
	if err := c.ShouldBindWith(&req, binding.Form); err != nil {
		WriteError(c, BindErrors(err))
		return
	}
	response := ApproveResponse{
		MultiResponse: MultiResponse{Failed: []uint64{}},
		Approved:      []ItemInfo{},
	}
	for _, result := range moderation.ApproveAll(a.DB, req.IDs, a.Gallery) {
		if result.Err != nil {
			response.Failed = append(response.Failed, result.ID)
			continue
		}
		response.Approved = append(response.Approved, NewItemInfo(result.Photo))
	}
	status := http.StatusOK
	if len(response.Failed) > 0 {
		response.Error = "some photos could not be approved"
		status = http.StatusMultiStatus
	}
	c.JSON(status, response)
}

// PendingDiscard rejects a submission and removes its files
func (a *API) PendingDiscard(c *gin.Context, user *models.User) {
	id, ok := idParam(c, "id")
	if !ok {
		c.JSON(http.StatusNotFound, NotFoundResponse)
		return
	}
	files, err := moderation.Discard(a.DB, id)
	if err != nil {
		WriteError(c, err)
		return
	}
	a.removeFiles(files)
	c.JSON(http.StatusOK, OKResponse)
}
