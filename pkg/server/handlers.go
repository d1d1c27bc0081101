// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package server

import (
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/ferry/pkg/entry"
	"github.com/walteh/ferry/pkg/fsops"
	"github.com/walteh/ferry/pkg/match"
	"github.com/walteh/ferry/pkg/registry"
	"github.com/walteh/ferry/pkg/service"
)

type itemsRequest struct {
	Items []entry.Descriptor `json:"items" binding:"required"`
}

type pathRequest struct {
	Path string `json:"path" binding:"required"`
}

type renameRequest struct {
	Path    string `json:"path" binding:"required"`
	NewName string `json:"new_name" binding:"required"`
}

type pasteRequest struct {
	Destination string `json:"destination" binding:"required"`
}

func fail(c *gin.Context, status int, err error) {
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

// fsStatus maps file operation errors onto HTTP statuses.
func fsStatus(err error) int {
	switch {
	case errors.Is(err, os.ErrNotExist):
		return http.StatusNotFound
	case errors.Is(err, os.ErrExist), errors.Is(err, fsops.ErrExists):
		return http.StatusConflict
	case errors.Is(err, fsops.ErrBadName), errors.Is(err, fsops.ErrNotDir), errors.Is(err, fsops.ErrUnknownKey):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// 🔍 search

func (s *Server) startSearch(c *gin.Context) {
	var req service.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	if err := s.svc.Search(c.Request.Context(), req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	c.Status(http.StatusAccepted)
}

func (s *Server) readSearch(c *gin.Context) {
	c.JSON(http.StatusOK, s.svc.SearchMessage())
}

func (s *Server) terminateSearch(c *gin.Context) {
	s.svc.TerminateSearch()
	c.Status(http.StatusNoContent)
}

func (s *Server) searchActive(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"searching": s.svc.IsSearching()})
}

// 📋 clipboard

func (s *Server) clipboardCopy(c *gin.Context) {
	var req itemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	s.svc.Copy(req.Items)
	c.Status(http.StatusNoContent)
}

func (s *Server) clipboardCut(c *gin.Context) {
	var req itemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	s.svc.Cut(req.Items)
	c.Status(http.StatusNoContent)
}

func (s *Server) clipboardState(c *gin.Context) {
	pending, ok := s.svc.ClipboardEntry()
	if !ok {
		c.JSON(http.StatusOK, gin.H{"empty": true})
		return
	}
	c.JSON(http.StatusOK, gin.H{"empty": false, "mode": pending.Mode, "items": pending.Items})
}

func (s *Server) clipboardClear(c *gin.Context) {
	s.svc.ClearClipboard()
	c.Status(http.StatusNoContent)
}

func (s *Server) paste(c *gin.Context) {
	var req pasteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	id, err := s.svc.Paste(c.Request.Context(), req.Destination)
	if err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	if id == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"id": id})
}

// 🚚 transfers

func (s *Server) listTransfers(c *gin.Context) {
	c.JSON(http.StatusOK, s.svc.TransferSessions())
}

func (s *Server) cleanupTransfers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"removed": s.svc.CleanupTransfers()})
}

func transferID(c *gin.Context) (registry.ID, bool) {
	id, err := registry.ParseParts(c.Param("slot"), c.Param("nonce"))
	if err != nil {
		fail(c, http.StatusBadRequest, err)
		return registry.ID{}, false
	}
	return id, true
}

func (s *Server) getTransfer(c *gin.Context) {
	id, ok := transferID(c)
	if !ok {
		return
	}
	msg, found := s.svc.TransferSession(id)
	if !found {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "no such transfer session"})
		return
	}
	c.JSON(http.StatusOK, msg)
}

func (s *Server) cancelTransfer(c *gin.Context) {
	id, ok := transferID(c)
	if !ok {
		return
	}
	if !s.svc.CancelTransfer(id) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "no such transfer session"})
		return
	}
	c.Status(http.StatusNoContent)
}

// 📁 file operations

func (s *Server) fsDelete(c *gin.Context) {
	var req itemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	if err := s.svc.Delete(c.Request.Context(), req.Items); err != nil {
		fail(c, fsStatus(err), err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) fsRename(c *gin.Context) {
	var req renameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	target, err := s.svc.Rename(c.Request.Context(), req.Path, req.NewName)
	if err != nil {
		fail(c, fsStatus(err), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"path": target})
}

func (s *Server) fsCreateFile(c *gin.Context) {
	var req pathRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	if err := s.svc.CreateFile(c.Request.Context(), req.Path); err != nil {
		fail(c, fsStatus(err), err)
		return
	}
	c.Status(http.StatusCreated)
}

func (s *Server) fsCreateDir(c *gin.Context) {
	var req pathRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	if err := s.svc.CreateDir(c.Request.Context(), req.Path); err != nil {
		fail(c, fsStatus(err), err)
		return
	}
	c.Status(http.StatusCreated)
}

// fsChildren takes ?dir= plus optional kind flags (files, dirs, links,
// sys_items) and ?sort=key&desc=true.
func (s *Server) fsChildren(c *gin.Context) {
	dir := c.Query("dir")
	if dir == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "dir is required"})
		return
	}

	var filter *match.Filter
	f := match.Filter{}
	flags := map[string]*bool{"files": &f.Files, "dirs": &f.Dirs, "links": &f.Links, "sys_items": &f.SysItems}
	for name, dst := range flags {
		if v, ok := c.GetQuery(name); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				fail(c, http.StatusBadRequest, errors.Errorf("query %s: %w", name, err))
				return
			}
			*dst = b
			filter = &f
		}
	}

	var order *fsops.Sort
	if key := c.Query("sort"); key != "" {
		order = &fsops.Sort{Key: fsops.SortKey(key), Descending: c.Query("desc") == "true"}
	}

	items, err := s.svc.Children(c.Request.Context(), dir, filter, order)
	if err != nil {
		fail(c, fsStatus(err), err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (s *Server) fsStat(c *gin.Context) {
	d, err := s.svc.Stat(c.Request.Context(), c.Query("path"))
	if err != nil {
		fail(c, fsStatus(err), err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (s *Server) fsReadLink(c *gin.Context) {
	target, err := s.svc.ReadLink(c.Request.Context(), c.Query("path"))
	if err != nil {
		fail(c, fsStatus(err), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"target": target})
}
