package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/plumstudio/atelier/models"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	err = db.AutoMigrate(&models.User{}, &models.Class{}, &models.Comment{}, &models.CommentLike{})
	if err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

type listResponse struct {
	Code int `json:"code"`
	Data struct {
		Items      []models.Comment `json:"items"`
		Pagination struct {
			Page       int   `json:"page"`
			PageSize   int   `json:"page_size"`
			Total      int64 `json:"total"`
			TotalPages int   `json:"total_pages"`
		} `json:"pagination"`
	} `json:"data"`
}

func listComments(t *testing.T, cc *CommentController, slug, query string) listResponse {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)
	ctx.Request = httptest.NewRequest(http.MethodGet, "/?"+query, nil)
	ctx.Params = gin.Params{{Key: "slug", Value: slug}}

	cc.ListComments(ctx)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp listResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func seedThread(t *testing.T, db *gorm.DB) models.Class {
	t.Helper()
	cls := models.Class{Title: "Wheel", Slug: "wheel", IsPublished: true}
	if err := db.Create(&cls).Error; err != nil {
		t.Fatalf("seed class: %v", err)
	}

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	top := []models.Comment{
		{ClassID: cls.ID, UserID: 1, Content: "oldest", LikeCount: 5, IsVisible: true, CreatedAt: base},
		{ClassID: cls.ID, UserID: 2, Content: "middle", LikeCount: 1, IsVisible: true, CreatedAt: base.Add(time.Hour)},
		{ClassID: cls.ID, UserID: 3, Content: "newest", LikeCount: 3, IsVisible: true, CreatedAt: base.Add(2 * time.Hour)},
	}
	for i := range top {
		if err := db.Create(&top[i]).Error; err != nil {
			t.Fatalf("seed comment: %v", err)
		}
	}

	replies := []models.Comment{
		{ClassID: cls.ID, ParentID: &top[0].ID, UserID: 4, Content: "reply-late", IsVisible: true, CreatedAt: base.Add(3 * time.Hour)},
		{ClassID: cls.ID, ParentID: &top[0].ID, UserID: 5, Content: "reply-early", IsVisible: true, CreatedAt: base.Add(30 * time.Minute)},
		{ClassID: cls.ID, ParentID: &top[1].ID, UserID: 6, Content: "hidden-reply", IsVisible: true, CreatedAt: base.Add(time.Hour)},
	}
	for i := range replies {
		if err := db.Create(&replies[i]).Error; err != nil {
			t.Fatalf("seed reply: %v", err)
		}
	}
	// IsVisible carries a true default; flipping to false needs an explicit update.
	if err := db.Model(&models.Comment{}).Where("id = ?", replies[2].ID).Update("is_visible", false).Error; err != nil {
		t.Fatalf("hide reply: %v", err)
	}
	return cls
}

func TestListCommentsLatestOrderAndReplies(t *testing.T) {
	db := testDB(t)
	seedThread(t, db)
	cc := NewCommentController(db)

	resp := listComments(t, cc, "wheel", "sort=latest")

	if resp.Data.Pagination.Total != 3 {
		t.Errorf("total = %d, want 3 (top-level only)", resp.Data.Pagination.Total)
	}
	if len(resp.Data.Items) != 3 {
		t.Fatalf("items = %d, want 3", len(resp.Data.Items))
	}
	if resp.Data.Items[0].Content != "newest" || resp.Data.Items[2].Content != "oldest" {
		t.Errorf("latest order wrong: %s ... %s", resp.Data.Items[0].Content, resp.Data.Items[2].Content)
	}

	oldest := resp.Data.Items[2]
	if len(oldest.Replies) != 2 {
		t.Fatalf("oldest has %d replies, want 2", len(oldest.Replies))
	}
	if oldest.Replies[0].Content != "reply-early" || oldest.Replies[1].Content != "reply-late" {
		t.Errorf("replies not in created order: %s, %s", oldest.Replies[0].Content, oldest.Replies[1].Content)
	}

	// Hidden replies stay hidden.
	middle := resp.Data.Items[1]
	if len(middle.Replies) != 0 {
		t.Errorf("hidden reply leaked: %v", middle.Replies)
	}
}

func TestListCommentsPopularOrder(t *testing.T) {
	db := testDB(t)
	seedThread(t, db)
	cc := NewCommentController(db)

	resp := listComments(t, cc, "wheel", "sort=popular")

	want := []string{"oldest", "newest", "middle"} // like counts 5, 3, 1
	for i, w := range want {
		if resp.Data.Items[i].Content != w {
			t.Errorf("popular[%d] = %s, want %s", i, resp.Data.Items[i].Content, w)
		}
	}
}

func TestListCommentsPagination(t *testing.T) {
	db := testDB(t)
	seedThread(t, db)
	cc := NewCommentController(db)

	resp := listComments(t, cc, "wheel", "sort=latest&page=2&page_size=2")

	if len(resp.Data.Items) != 1 {
		t.Fatalf("page 2 items = %d, want 1", len(resp.Data.Items))
	}
	if resp.Data.Items[0].Content != "oldest" {
		t.Errorf("page 2 item = %s, want oldest", resp.Data.Items[0].Content)
	}
	if resp.Data.Pagination.TotalPages != 2 {
		t.Errorf("total pages = %d, want 2", resp.Data.Pagination.TotalPages)
	}
}

func TestListCommentsUnknownClass(t *testing.T) {
	db := testDB(t)
	cc := NewCommentController(db)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)
	ctx.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	ctx.Params = gin.Params{{Key: "slug", Value: "nope"}}

	cc.ListComments(ctx)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestListCommentsHiddenTopLevelExcluded(t *testing.T) {
	db := testDB(t)
	cls := seedThread(t, db)
	cc := NewCommentController(db)

	hidden := models.Comment{ClassID: cls.ID, UserID: 9, Content: "spam", IsVisible: true}
	if err := db.Create(&hidden).Error; err != nil {
		t.Fatalf("seed hidden: %v", err)
	}
	if err := db.Model(&models.Comment{}).Where("id = ?", hidden.ID).Update("is_visible", false).Error; err != nil {
		t.Fatalf("hide comment: %v", err)
	}

	resp := listComments(t, cc, "wheel", "")
	if resp.Data.Pagination.Total != 3 {
		t.Errorf("total = %d, want 3 with hidden excluded", resp.Data.Pagination.Total)
	}
}
