package drive

import (
	"fmt"
	"io"
	"strings"

	"mentorportal/internal/config"
	"mentorportal/internal/domain"
	"mentorportal/internal/domain/models/drive"
	"mentorportal/internal/folderrules"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// normalizeCreate trims input, resolves the parent level and fills in the
// default folder type.
func (c *Controller) normalizeCreate(req *drive.CreateFolderRequest, idx *Index) (folderrules.Level, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.TeamID = strings.TrimSpace(req.TeamID)
	req.FolderType = drive.FolderType(strings.TrimSpace(string(req.FolderType)))

	if req.ParentFolderID != nil {
		if _, ok := idx.Folder(*req.ParentFolderID); !ok {
			return "", fmt.Errorf("%w: parent_folder_id: folder %d is not in the tree", domain.ErrValidation, *req.ParentFolderID)
		}
	}
	parentLevel := idx.LevelOf(req.ParentFolderID)

	if req.FolderType == "" {
		if allowed := c.allowedUnder(parentLevel); len(allowed) > 0 {
			req.FolderType = allowed[0]
		}
	}
	return parentLevel, nil
}

func (c *Controller) validateCreate(req *drive.CreateFolderRequest, parentLevel folderrules.Level) error {
	allowed := c.allowedUnder(parentLevel)
	requiresTeam := c.store.Rules().Has(folderrules.LevelOf(req.FolderType)) &&
		c.store.Rules().RequiresTeamID(req.FolderType)

	err := validation.ValidateStruct(req,
		validation.Field(&req.Name,
			validation.Required.Error("folder name is required"),
			validation.RuneLength(1, config.MaxFolderNameLength),
		),
		validation.Field(&req.FolderType,
			validation.Required.Error(fmt.Sprintf("no folder can be created under %s", parentLevel)),
			validation.By(func(value interface{}) error {
				t, _ := value.(drive.FolderType)
				for _, a := range allowed {
					if a == t {
						return nil
					}
				}
				return fmt.Errorf("%q cannot be created under %s", t, parentLevel)
			}),
		),
		validation.Field(&req.TeamID,
			validation.When(requiresTeam,
				validation.Required.Error(fmt.Sprintf("team id is required for %s folders", req.FolderType)),
				validation.RuneLength(1, config.MaxTeamIDLength),
			),
		),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if !requiresTeam {
		req.TeamID = ""
	}
	return nil
}

func validateUpload(filename string, content io.Reader) error {
	if strings.TrimSpace(filename) == "" {
		return fmt.Errorf("%w: file name is required", domain.ErrValidation)
	}
	if content == nil {
		return fmt.Errorf("%w: file content is required", domain.ErrValidation)
	}
	return nil
}

func validateSync(driveFolderID string) error {
	err := validation.Validate(driveFolderID,
		validation.Length(0, 256),
		validation.By(func(value interface{}) error {
			s, _ := value.(string)
			if strings.ContainsAny(s, " \t\r\n/") {
				return fmt.Errorf("must be a drive folder id")
			}
			return nil
		}),
	)
	if err != nil {
		return fmt.Errorf("%w: folder_id: %v", domain.ErrValidation, err)
	}
	return nil
}
