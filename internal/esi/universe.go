package esi

import (
	"context"
	"fmt"
)

// TypeInfo is the subset of the ESI universe type record the watchlist uses.
type TypeInfo struct {
	TypeID  int32  `json:"type_id"`
	Name    string `json:"name"`
	GroupID int32  `json:"group_id"`
}

// GroupInfo carries group-level classification for a type.
type GroupInfo struct {
	GroupID    int32  `json:"group_id"`
	Name       string `json:"name"`
	CategoryID int32  `json:"category_id"`
}

// CategoryInfo names an item category.
type CategoryInfo struct {
	CategoryID int32  `json:"category_id"`
	Name       string `json:"name"`
}

// FetchType fetches the universe record for one type id.
func (c *Client) FetchType(ctx context.Context, typeID int32) (*TypeInfo, error) {
	var info TypeInfo
	path := fmt.Sprintf("/universe/types/%d/", typeID)
	if err := c.getJSON(ctx, path, nil, &info); err != nil {
		return nil, fmt.Errorf("fetch type %d: %w", typeID, err)
	}
	info.TypeID = typeID
	return &info, nil
}

// FetchGroup fetches the universe record for one group id.
func (c *Client) FetchGroup(ctx context.Context, groupID int32) (*GroupInfo, error) {
	var info GroupInfo
	path := fmt.Sprintf("/universe/groups/%d/", groupID)
	if err := c.getJSON(ctx, path, nil, &info); err != nil {
		return nil, fmt.Errorf("fetch group %d: %w", groupID, err)
	}
	info.GroupID = groupID
	return &info, nil
}

// FetchCategory fetches the universe record for one category id.
func (c *Client) FetchCategory(ctx context.Context, categoryID int32) (*CategoryInfo, error) {
	var info CategoryInfo
	path := fmt.Sprintf("/universe/categories/%d/", categoryID)
	if err := c.getJSON(ctx, path, nil, &info); err != nil {
		return nil, fmt.Errorf("fetch category %d: %w", categoryID, err)
	}
	info.CategoryID = categoryID
	return &info, nil
}
