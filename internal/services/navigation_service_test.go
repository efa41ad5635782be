package services

import (
	"context"
	"encoding/json"
	"sort"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/storefront/internal/models"
)

type fakeNavigationRepo struct {
	items map[uuid.UUID]models.NavItem
	links map[uuid.UUID]models.SocialMediaLink
}

func newFakeNavigationRepo() *fakeNavigationRepo {
	return &fakeNavigationRepo{
		items: make(map[uuid.UUID]models.NavItem),
		links: make(map[uuid.UUID]models.SocialMediaLink),
	}
}

func (r *fakeNavigationRepo) ListNavItems(ctx context.Context, location string, activeOnly bool) ([]models.NavItem, error) {
	var out []models.NavItem
	for _, item := range r.items {
		if item.Location != location || (activeOnly && !item.IsActive) {
			continue
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DisplayOrder < out[j].DisplayOrder })
	return out, nil
}

func (r *fakeNavigationRepo) FindNavItem(ctx context.Context, id uuid.UUID) (*models.NavItem, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &item, nil
}

func (r *fakeNavigationRepo) CreateNavItem(ctx context.Context, item *models.NavItem) error {
	item.ID = uuid.New()
	r.items[item.ID] = *item
	return nil
}

func (r *fakeNavigationRepo) SaveNavItem(ctx context.Context, item *models.NavItem) error {
	r.items[item.ID] = *item
	return nil
}

func (r *fakeNavigationRepo) DeleteNavItem(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.items[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *fakeNavigationRepo) ListSocialLinks(ctx context.Context, activeOnly bool) ([]models.SocialMediaLink, error) {
	var out []models.SocialMediaLink
	for _, link := range r.links {
		if activeOnly && !link.IsActive {
			continue
		}
		out = append(out, link)
	}
	return out, nil
}

func (r *fakeNavigationRepo) FindSocialLink(ctx context.Context, id uuid.UUID) (*models.SocialMediaLink, error) {
	link, ok := r.links[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &link, nil
}

func (r *fakeNavigationRepo) CreateSocialLink(ctx context.Context, link *models.SocialMediaLink) error {
	link.ID = uuid.New()
	r.links[link.ID] = *link
	return nil
}

func (r *fakeNavigationRepo) SaveSocialLink(ctx context.Context, link *models.SocialMediaLink) error {
	r.links[link.ID] = *link
	return nil
}

func (r *fakeNavigationRepo) DeleteSocialLink(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.links[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.links, id)
	return nil
}

func strPtr(s string) *string { return &s }

func TestParseIcon(t *testing.T) {
	cases := map[string]Icon{
		"ShoppingBag":  IconShoppingBag,
		"shopping_bag": IconShoppingBag,
		"shopping-bag": IconShoppingBag,
		"MapPin":       IconMapPin,
		"facebook":     IconFacebook,
		" Instagram ":  IconInstagram,
	}
	for input, want := range cases {
		got, ok := ParseIcon(input)
		assert.True(t, ok, input)
		assert.Equal(t, want, got, input)
	}

	_, ok := ParseIcon("myspace")
	assert.False(t, ok)
	assert.Contains(t, Icons(), IconYoutube)
}

func TestCreateNavDefaults(t *testing.T) {
	svc := NewNavigationService(newFakeNavigationRepo(), zap.NewNop())
	ctx := context.Background()

	item, err := svc.CreateNav(ctx, NavItemInput{Label: strPtr("Shop"), Href: strPtr("/shop"), Icon: strPtr("ShoppingBag")})
	require.NoError(t, err)
	assert.Equal(t, "link", item.Type)
	assert.Equal(t, "_self", item.Target)
	assert.Equal(t, "header", item.Location)
	assert.True(t, item.IsActive)
	assert.Equal(t, string(IconShoppingBag), item.Icon)

	_, err = svc.CreateNav(ctx, NavItemInput{Label: strPtr("Shop")})
	require.Error(t, err)
	assert.Equal(t, "Label and href are required", err.Error())

	_, err = svc.CreateNav(ctx, NavItemInput{Label: strPtr("x"), Href: strPtr("/x"), Target: strPtr("_parent")})
	assert.True(t, IsKind(err, KindValidation))

	_, err = svc.CreateNav(ctx, NavItemInput{Label: strPtr("x"), Href: strPtr("/x"), Icon: strPtr("unicorn")})
	assert.True(t, IsKind(err, KindValidation))

	_, err = svc.CreateNav(ctx, NavItemInput{Label: strPtr("x"), Href: strPtr("/x"), Meta: json.RawMessage(`{bad`)})
	assert.True(t, IsKind(err, KindValidation))
}

func TestListNavByLocation(t *testing.T) {
	svc := NewNavigationService(newFakeNavigationRepo(), zap.NewNop())
	ctx := context.Background()
	off := false
	second, first := 2, 1

	_, err := svc.CreateNav(ctx, NavItemInput{Label: strPtr("About"), Href: strPtr("/about"), DisplayOrder: &second})
	require.NoError(t, err)
	_, err = svc.CreateNav(ctx, NavItemInput{Label: strPtr("Home"), Href: strPtr("/"), DisplayOrder: &first})
	require.NoError(t, err)
	_, err = svc.CreateNav(ctx, NavItemInput{Label: strPtr("Hidden"), Href: strPtr("/h"), IsActive: &off})
	require.NoError(t, err)
	_, err = svc.CreateNav(ctx, NavItemInput{Label: strPtr("Terms"), Href: strPtr("/terms"), Location: strPtr("footer")})
	require.NoError(t, err)

	items, err := svc.ListNav(ctx, "", true)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Home", items[0].Label)
	assert.Equal(t, "About", items[1].Label)

	footer, err := svc.ListNav(ctx, "footer", false)
	require.NoError(t, err)
	assert.Len(t, footer, 1)

	none, err := svc.ListNav(ctx, "mobile", false)
	require.NoError(t, err)
	assert.NotNil(t, none)
}

func TestUpdateAndDeleteNav(t *testing.T) {
	svc := NewNavigationService(newFakeNavigationRepo(), zap.NewNop())
	ctx := context.Background()

	item, err := svc.CreateNav(ctx, NavItemInput{Label: strPtr("Blog"), Href: strPtr("/blog")})
	require.NoError(t, err)

	updated, err := svc.UpdateNav(ctx, item.ID, NavItemInput{Target: strPtr("_blank")})
	require.NoError(t, err)
	assert.Equal(t, "Blog", updated.Label)
	assert.Equal(t, "_blank", updated.Target)

	_, err = svc.UpdateNav(ctx, item.ID, NavItemInput{Label: strPtr(" ")})
	assert.True(t, IsKind(err, KindValidation))

	_, err = svc.UpdateNav(ctx, item.ID, NavItemInput{ParentID: strPtr(item.ID.String())})
	assert.True(t, IsKind(err, KindValidation))

	_, err = svc.UpdateNav(ctx, uuid.New(), NavItemInput{})
	assert.Equal(t, "Navigation item not found", err.Error())

	require.NoError(t, svc.DeleteNav(ctx, item.ID))
	assert.True(t, IsKind(svc.DeleteNav(ctx, item.ID), KindNotFound))
}

func TestSocialLinks(t *testing.T) {
	svc := NewNavigationService(newFakeNavigationRepo(), zap.NewNop())
	ctx := context.Background()

	_, err := svc.CreateSocialLink(ctx, SocialLinkInput{Platform: strPtr("Facebook"), URL: strPtr("https://facebook.com/shop")})
	require.Error(t, err)
	assert.Equal(t, "Platform, URL, and icon are required", err.Error())

	_, err = svc.CreateSocialLink(ctx, SocialLinkInput{Platform: strPtr("MySpace"), URL: strPtr("https://myspace.com/shop"), Icon: strPtr("myspace")})
	assert.True(t, IsKind(err, KindValidation))

	_, err = svc.CreateSocialLink(ctx, SocialLinkInput{Platform: strPtr("Facebook"), URL: strPtr("not a url"), Icon: strPtr("facebook")})
	assert.True(t, IsKind(err, KindValidation))

	link, err := svc.CreateSocialLink(ctx, SocialLinkInput{Platform: strPtr("Instagram"), URL: strPtr("https://instagram.com/shop"), Icon: strPtr("Instagram")})
	require.NoError(t, err)
	assert.Equal(t, "instagram", link.Icon)
	assert.True(t, link.IsActive)

	off := false
	_, err = svc.UpdateSocialLink(ctx, link.ID, SocialLinkInput{IsActive: &off})
	require.NoError(t, err)

	active, err := svc.ListSocialLinks(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 0, active.Total)
	assert.NotNil(t, active.Links)

	all, err := svc.ListSocialLinks(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 1, all.Total)

	require.NoError(t, svc.DeleteSocialLink(ctx, link.ID))
	assert.True(t, IsKind(svc.DeleteSocialLink(ctx, link.ID), KindNotFound))
}
