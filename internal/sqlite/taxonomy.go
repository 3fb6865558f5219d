package sqlite

import (
	"context"
	"fmt"

	"github.com/quillfeed/quill/internal/quill"
)

func (r Repo) AllTags(ctx context.Context) ([]quill.Tag, error) {
	const q = `SELECT id, name, created_at FROM tags ORDER BY name;`

	var tags []quill.Tag
	if err := r.db.SelectContext(ctx, &tags, q); err != nil {
		return nil, fmt.Errorf("error selecting tags: %s", err)
	}

	return tags, nil
}

func (r Repo) AllFolders(ctx context.Context) ([]quill.Folder, error) {
	const q = `SELECT id, name, created_at FROM folders ORDER BY name;`

	var folders []quill.Folder
	if err := r.db.SelectContext(ctx, &folders, q); err != nil {
		return nil, fmt.Errorf("error selecting folders: %s", err)
	}

	return folders, nil
}
