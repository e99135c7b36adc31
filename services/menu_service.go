package services

import (
	"context"
	"mime/multipart"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/yeremiapane/pc-cafe/hub"
	"github.com/yeremiapane/pc-cafe/models"
	"github.com/yeremiapane/pc-cafe/utils"
)

// MenuView is a menu item with its image path expanded to a URL.
type MenuView struct {
	models.Menu
	ImageURL *string `json:"imageUrl"`
}

// MenuInput carries the multipart fields of a create or update. Nil means
// "not sent".
type MenuInput struct {
	Name     *string
	Price    *int64
	Category *string
	Image    *multipart.FileHeader
}

type MenuEvent struct {
	Action string `json:"action"`
	MenuID uint   `json:"menuId"`
}

type MenuService struct {
	db      *gorm.DB
	assets  *AssetStore
	baseURL string
	events  Broadcaster
}

func NewMenuService(db *gorm.DB, assets *AssetStore, baseURL string, events Broadcaster) *MenuService {
	return &MenuService{db: db, assets: assets, baseURL: baseURL, events: broadcasterOrNoop(events)}
}

func (s *MenuService) List(ctx context.Context) ([]MenuView, error) {
	var menus []models.Menu
	if err := s.db.WithContext(ctx).Order("id").Find(&menus).Error; err != nil {
		return nil, utils.Internal("failed to load menus", err)
	}
	out := make([]MenuView, 0, len(menus))
	for _, m := range menus {
		out = append(out, s.View(m))
	}
	return out, nil
}

func (s *MenuService) Create(ctx context.Context, in MenuInput) (*models.Menu, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, utils.BadRequest("name is required")
	}
	if in.Price == nil {
		return nil, utils.BadRequest("price is required")
	}
	if *in.Price <= 0 {
		return nil, utils.BadRequest("price must be a positive integer")
	}

	menu := models.Menu{
		Name:  strings.TrimSpace(*in.Name),
		Price: *in.Price,
	}
	if in.Category != nil {
		menu.Category = strings.TrimSpace(*in.Category)
	}

	if in.Image != nil {
		rel, err := s.assets.Save(in.Image)
		if err != nil {
			return nil, err
		}
		menu.ImagePath = &rel
	}

	if err := s.db.WithContext(ctx).Create(&menu).Error; err != nil {
		if menu.ImagePath != nil {
			s.removeAsset(*menu.ImagePath)
		}
		return nil, utils.Internal("failed to create menu", err)
	}

	s.events.Broadcast(hub.EventMenuUpdate, MenuEvent{Action: "create", MenuID: menu.ID})
	return &menu, nil
}

func (s *MenuService) Update(ctx context.Context, id uint, in MenuInput) (*models.Menu, error) {
	var menu models.Menu
	if err := s.db.WithContext(ctx).First(&menu, id).Error; err != nil {
		if utils.IsNotFound(err) {
			return nil, utils.NotFound("menu not found")
		}
		return nil, utils.Internal("failed to load menu", err)
	}

	updates := map[string]interface{}{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, utils.BadRequest("name must not be empty")
		}
		updates["name"] = name
	}
	if in.Price != nil {
		if *in.Price <= 0 {
			return nil, utils.BadRequest("price must be a positive integer")
		}
		updates["price"] = *in.Price
	}
	if in.Category != nil {
		updates["category"] = strings.TrimSpace(*in.Category)
	}

	var oldImage *string
	if menu.ImagePath != nil {
		old := *menu.ImagePath
		oldImage = &old
	}
	var newImage *string
	if in.Image != nil {
		rel, err := s.assets.Save(in.Image)
		if err != nil {
			return nil, err
		}
		newImage = &rel
		updates["image_path"] = rel
	}

	if len(updates) == 0 {
		return &menu, nil
	}

	if err := s.db.WithContext(ctx).Model(&menu).Updates(updates).Error; err != nil {
		if newImage != nil {
			s.removeAsset(*newImage)
		}
		return nil, utils.Internal("failed to update menu", err)
	}
	if err := s.db.WithContext(ctx).First(&menu, id).Error; err != nil {
		return nil, utils.Internal("failed to reload menu", err)
	}

	if newImage != nil && oldImage != nil && *oldImage != *newImage {
		s.removeAsset(*oldImage)
	}

	s.events.Broadcast(hub.EventMenuUpdate, MenuEvent{Action: "update", MenuID: menu.ID})
	return &menu, nil
}

// Delete removes the menu and every order that references it, then the
// image file. It returns the number of orders removed.
func (s *MenuService) Delete(ctx context.Context, id uint) (int64, error) {
	var menu models.Menu
	var removed int64

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&menu, id).Error; err != nil {
			if utils.IsNotFound(err) {
				return utils.NotFound("menu not found")
			}
			return err
		}
		res := tx.Where("menu_id = ?", id).Delete(&models.Order{})
		if res.Error != nil {
			return res.Error
		}
		removed = res.RowsAffected
		return tx.Delete(&menu).Error
	})
	if err != nil {
		return 0, wrapErr("failed to delete menu", err)
	}

	if menu.ImagePath != nil {
		s.removeAsset(*menu.ImagePath)
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"menu_id": id,
		"orders":  removed,
	}).Info("Menu deleted")
	s.events.Broadcast(hub.EventMenuUpdate, MenuEvent{Action: "delete", MenuID: id})
	return removed, nil
}

// View expands a single menu for responses.
func (s *MenuService) View(m models.Menu) MenuView {
	return MenuView{Menu: m, ImageURL: s.assets.URL(s.baseURL, m.ImagePath)}
}

func (s *MenuService) removeAsset(rel string) {
	if err := s.assets.Remove(rel); err != nil {
		utils.ErrorLogger.WithError(err).WithField("path", rel).Warn("failed to remove menu image")
	}
}
