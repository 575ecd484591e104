package api

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/skilladmin/internal/api/apitest"
	"github.com/felixgeelhaar/skilladmin/internal/session"
)

// loggedIn returns a client for srv whose store holds a valid session.
func loggedIn(t *testing.T, srv *apitest.Server) *Client {
	t.Helper()
	ctx := context.Background()
	store := session.NewMemoryStore()
	c, err := New(srv.URL, store)
	require.NoError(t, err)

	resp, err := c.Auth().Login(ctx, apitest.Email, apitest.Password)
	require.NoError(t, err)
	require.NotNil(t, resp.Admin)
	require.NoError(t, store.Set(ctx, session.Session{Token: resp.Token, Admin: *resp.Admin}))
	return c
}

func TestLogin(t *testing.T) {
	srv := apitest.NewServer(t)
	c, err := New(srv.URL, session.NewMemoryStore())
	require.NoError(t, err)

	resp, err := c.Auth().Login(context.Background(), apitest.Email, apitest.Password)
	require.NoError(t, err)
	assert.Equal(t, apitest.Token, resp.Token)
	require.NotNil(t, resp.Admin)
	assert.Equal(t, apitest.AdminID, resp.Admin.ID)
	assert.Equal(t, "Test Admin", resp.Admin.FullName)

	_, err = c.Auth().Login(context.Background(), apitest.Email, "wrong")
	assert.Equal(t, "Invalid credentials", Message(err, "Invalid email or password"))
}

func TestCreateIncreasesTotal(t *testing.T) {
	srv := apitest.NewServer(t)
	srv.SeedUser("Ada Lovelace", "ada@example.test")
	srv.SeedUser("Alan Turing", "alan@example.test")
	c := loggedIn(t, srv)
	ctx := context.Background()

	before, err := c.Users().List(ctx, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, before.Total)
	assert.Len(t, before.Items, 2)

	created, err := c.Users().Create(ctx, UserInput{
		FullName: "Grace Hopper",
		Email:    "grace@example.test",
		Password: "cobol",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Grace Hopper", created.FullName)
	assert.Equal(t, DefaultUserRole, created.Role)

	after, err := c.Users().List(ctx, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, before.Total+1, after.Total)
}

func TestListSendsOneBasedPage(t *testing.T) {
	srv := apitest.NewServer(t)
	for i := 0; i < 25; i++ {
		srv.SeedSkill("skill")
	}
	c := loggedIn(t, srv)

	p, err := c.Skills().List(context.Background(), 2, 10)
	require.NoError(t, err)

	last := srv.LastRequest()
	assert.Equal(t, "/admin/get/skills", last.Path)
	assert.Equal(t, "limit=10&page=3", last.Query)
	assert.Equal(t, apitest.Token, last.Token)
	assert.Len(t, p.Items, 5)
	assert.Equal(t, 25, p.Total)
	assert.Equal(t, 2, p.Page)
	assert.Equal(t, 10, p.Size)
	assert.Equal(t, 3, p.Pages())
}

func TestInvalidPageNeverHitsNetwork(t *testing.T) {
	srv := apitest.NewServer(t)
	c := loggedIn(t, srv)
	sent := len(srv.Requests())

	tests := []struct {
		page, size int
	}{
		{-1, 10},
		{0, 0},
		{0, 1001},
	}
	for _, tt := range tests {
		_, err := c.Users().List(context.Background(), tt.page, tt.size)
		assert.ErrorIs(t, err, ErrInvalidPage)
		_, err = c.Reels().List(context.Background(), tt.page, tt.size)
		assert.ErrorIs(t, err, ErrInvalidPage)
	}
	assert.Len(t, srv.Requests(), sent)

	assert.NoError(t, ValidatePage(0, 1))
	assert.NoError(t, ValidatePage(7, MaxPageSize))
}

func TestInvalidInputNeverHitsNetwork(t *testing.T) {
	srv := apitest.NewServer(t)
	c := loggedIn(t, srv)
	sent := len(srv.Requests())
	ctx := context.Background()

	_, err := c.Skills().Create(ctx, SkillInput{})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = c.SubSkills().Create(ctx, SubSkillInput{SubSkillName: "x"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = c.Users().Create(ctx, UserInput{Email: "x@example.test"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = c.Users().Delete(ctx, " ")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = c.Reels().Upload(ctx, ReelUpload{Title: "t"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	assert.Len(t, srv.Requests(), sent)
}

func TestSkillLifecycle(t *testing.T) {
	srv := apitest.NewServer(t)
	c := loggedIn(t, srv)
	ctx := context.Background()

	skill, err := c.Skills().Create(ctx, SkillInput{SkillName: "Cooking", Color: "#ff0000"})
	require.NoError(t, err)
	require.NotEmpty(t, skill.ID)

	updated, err := c.Skills().Update(ctx, skill.ID, SkillInput{SkillName: "Baking", Color: "#00ff00"})
	require.NoError(t, err)
	assert.Equal(t, skill.ID, updated.ID)
	assert.Equal(t, "Baking", updated.SkillName)
	assert.Equal(t, "/skill/update/"+skill.ID, srv.LastRequest().Path)

	ack, err := c.Skills().Delete(ctx, skill.ID)
	require.NoError(t, err)
	assert.Equal(t, "Skill deleted successfully", ack.Message)

	_, err = c.Skills().Delete(ctx, skill.ID)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
	assert.Equal(t, "Not found", Message(err, "Failed to delete skill"))
}

func TestSubSkillParentName(t *testing.T) {
	srv := apitest.NewServer(t)
	skillID := srv.SeedSkill("Music")
	srv.SeedSubSkill("Guitar", skillID)
	srv.SeedSubSkill("Orphan", "missing")
	c := loggedIn(t, srv)

	p, err := c.SubSkills().List(context.Background(), 0, 10)
	require.NoError(t, err)
	require.Len(t, p.Items, 2)
	assert.Equal(t, 2, p.Total)
	assert.Equal(t, "Music", p.Items[0].ParentName())
	assert.Equal(t, skillID, p.Items[0].Skill.ID)
	assert.Equal(t, NotAvailable, p.Items[1].ParentName())
}

func TestReelsListFlattensReferences(t *testing.T) {
	srv := apitest.NewServer(t)
	userID := srv.SeedUser("Ada Lovelace", "ada@example.test")
	skillID := srv.SeedSkill("Music")
	subID := srv.SeedSubSkill("Guitar", skillID)
	srv.SeedReel("First chords", userID, skillID, subID)
	c := loggedIn(t, srv)

	p, err := c.Reels().List(context.Background(), 0, 10)
	require.NoError(t, err)
	require.Len(t, p.Items, 1)

	r := p.Items[0]
	assert.Equal(t, "First chords", r.DisplayTitle())
	assert.Equal(t, "Ada Lovelace", r.UserName())
	assert.Equal(t, "Music", r.Skills.Names())
	assert.Equal(t, "Guitar", r.SubSkills.Names())
	assert.Equal(t, "2024-03-09", r.CreatedDate())
}

func TestReelUpload(t *testing.T) {
	srv := apitest.NewServer(t)
	c := loggedIn(t, srv)

	dir := t.TempDir()
	video := filepath.Join(dir, "clip.mp4")
	thumb := filepath.Join(dir, "thumb.png")
	require.NoError(t, os.WriteFile(video, make([]byte, 4096), 0o600))
	require.NoError(t, os.WriteFile(thumb, []byte("png"), 0o600))

	reel, err := c.Reels().Upload(context.Background(), ReelUpload{
		Title:         "Intro",
		Description:   "First reel",
		UserID:        "u1",
		SkillID:       "s1",
		SubSkillID:    "ss1",
		VideoPath:     video,
		ThumbnailPath: thumb,
	})
	require.NoError(t, err)
	assert.Equal(t, "Intro", reel.Title)
	assert.NotEmpty(t, reel.ID)

	uploads := srv.Uploads()
	require.Len(t, uploads, 1)
	up := uploads[0]
	assert.Equal(t, map[string]string{
		"title":       "Intro",
		"description": "First reel",
		"user":        "u1",
		"skillId":     "s1",
		"subSkillsId": "ss1",
	}, up.Fields)
	assert.Equal(t, int64(4096), up.Files["reelvideo"])
	assert.Equal(t, int64(3), up.Files["thumbnail"])
	assert.Equal(t, 1, srv.Count("reels"))
}

func TestReelUploadMissingFile(t *testing.T) {
	srv := apitest.NewServer(t)
	c := loggedIn(t, srv)
	sent := len(srv.Requests())

	_, err := c.Reels().Upload(context.Background(), ReelUpload{
		Title: "Intro", UserID: "u1", SkillID: "s1",
		VideoPath: filepath.Join(t.TempDir(), "missing.mp4"),
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Len(t, srv.Requests(), sent)
}

func TestReelUpdateUnsupported(t *testing.T) {
	srv := apitest.NewServer(t)
	c := loggedIn(t, srv)
	sent := len(srv.Requests())

	_, err := c.Reels().Update(context.Background(), "r1", ReelUpload{Title: "x"})
	assert.ErrorIs(t, err, ErrUnsupported)
	assert.Len(t, srv.Requests(), sent)

	var _ Resource[Reel, ReelUpload] = c.Reels()
	var _ Resource[User, UserInput] = c.Users()
	var _ Resource[Skill, SkillInput] = c.Skills()
	var _ Resource[SubSkill, SubSkillInput] = c.SubSkills()
}

func TestCatalog(t *testing.T) {
	srv := apitest.NewServer(t)
	music := srv.SeedSkill("Music")
	art := srv.SeedSkill("Art")
	srv.SeedSubSkill("Guitar", music)
	srv.SeedSubSkill("Piano", music)
	srv.SeedSubSkill("Drawing", art)
	c := loggedIn(t, srv)

	cat, err := c.Catalog().SkillsAndSubSkills(context.Background())
	require.NoError(t, err)
	assert.Len(t, cat.Skills, 2)
	assert.Len(t, cat.SubSkills, 3)
	assert.Len(t, cat.SubSkillsOf(music), 2)
	assert.Len(t, cat.SubSkillsOf(art), 1)
	assert.Empty(t, cat.SubSkillsOf("nope"))
	assert.Equal(t, "Art", cat.SkillName(art))
}

func TestServerErrorPropagates(t *testing.T) {
	srv := apitest.NewServer(t)
	c := loggedIn(t, srv)
	srv.FailNext(http.StatusInternalServerError, `{"message":"database offline"}`)

	_, err := c.Users().List(context.Background(), 0, 10)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "database offline", se.Message)
}

func TestDecodePageShapes(t *testing.T) {
	shape := listShape{items: "users", total: "totalUsers"}

	tests := []struct {
		name      string
		body      string
		wantItems int
		wantTotal int
	}{
		{"flat total", `{"users":[{"_id":"1"}],"totalUsers":41}`, 1, 41},
		{"nested pagination", `{"users":[{"_id":"1"},{"_id":"2"}],"pagination":{"totalUsers":7}}`, 2, 7},
		{"generic total", `{"users":[],"total":3}`, 0, 3},
		{"missing everything", `{}`, 0, 0},
		{"null items", `{"users":null,"totalUsers":0}`, 0, 0},
		{"float total", `{"users":[],"totalUsers":12.0}`, 0, 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := decodePage[User](json.RawMessage(tt.body), shape, 0, 10)
			require.NoError(t, err)
			assert.Len(t, p.Items, tt.wantItems)
			assert.NotNil(t, p.Items)
			assert.Equal(t, tt.wantTotal, p.Total)
		})
	}

	_, err := decodePage[User](json.RawMessage(`{"users":"nope"}`), shape, 0, 10)
	var de *DecodeError
	assert.ErrorAs(t, err, &de)
}

func TestDecodeItem(t *testing.T) {
	item, msg, err := decodeItem[Skill](json.RawMessage(`{"message":"ok","skill":{"_id":"s1","skillName":"A"}}`), "skill")
	require.NoError(t, err)
	assert.Equal(t, "ok", msg)
	assert.Equal(t, "s1", item.ID)

	item, _, err = decodeItem[Skill](json.RawMessage(`{"data":{"_id":"s2"}}`), "skill")
	require.NoError(t, err)
	assert.Equal(t, "s2", item.ID)

	item, _, err = decodeItem[Skill](json.RawMessage(`{"_id":"s3","skillName":"B"}`), "skill")
	require.NoError(t, err)
	assert.Equal(t, "s3", item.ID)

	item, msg, err = decodeItem[Skill](json.RawMessage(`{"msg":"Skill added"}`), "skill")
	require.NoError(t, err)
	assert.Nil(t, item)
	assert.Equal(t, "Skill added", msg)
}
