package resumes

import "context"

// Repo defines persistence operations for resumes.
type Repo interface {
	// Create stores a resume. It returns ErrDuplicate when the content hash exists.
	Create(ctx context.Context, resume Resume) error
	GetByID(ctx context.Context, id string) (Resume, error)
	GetByHash(ctx context.Context, contentHash string) (Resume, error)
	// List returns resumes newest first. A zero limit means no limit.
	List(ctx context.Context, limit, offset int) ([]Resume, error)
	Delete(ctx context.Context, id string) (bool, error)
	Stats(ctx context.Context) (Stats, error)
}
