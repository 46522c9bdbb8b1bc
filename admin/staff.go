package admin

import (
	"go.uber.org/zap"

	"hibiki/errs"
	"hibiki/models"
	"hibiki/store"
	"hibiki/utils"
)

const staffPageSize = 10

// StaffInput is a staff create/update request. Password is optional on
// update: empty keeps the current hash.
type StaffInput struct {
	Email    string `json:"email" binding:"required,email,max=256"`
	Password string `json:"password"`
	Role     string `json:"role" binding:"required"`
}

// StaffList is one page of staff accounts.
type StaffList struct {
	Staff []models.Staff `json:"staff"`
	Total int64          `json:"total"`
}

// StaffService manages admin panel accounts.
type StaffService struct {
	staff *store.StaffStore
	log   *zap.SugaredLogger
}

func NewStaffService(staff *store.StaffStore, log *zap.SugaredLogger) *StaffService {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &StaffService{staff: staff, log: log}
}

// Create registers a staff account with a bcrypt password hash.
func (s *StaffService) Create(input *StaffInput) (*models.Staff, error) {
	if err := validRole(input.Role); err != nil {
		return nil, err
	}
	if input.Password == "" {
		return nil, errs.BadRequest("password must not be empty")
	}
	existing, err := s.staff.ByEmail(input.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errs.Conflict("staff member %s already exists", input.Email)
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	member := &models.Staff{
		Email:        input.Email,
		PasswordHash: hash,
		Role:         input.Role,
	}
	if err := s.staff.Create(member); err != nil {
		return nil, err
	}
	s.log.Infow("staff member created", "email", member.Email, "role", member.Role)
	return member, nil
}

// Update rewrites a staff account. The password changes only when a new one
// is supplied.
func (s *StaffService) Update(id string, input *StaffInput) (*models.Staff, error) {
	if err := validRole(input.Role); err != nil {
		return nil, err
	}
	member, err := s.requireStaff(id)
	if err != nil {
		return nil, err
	}

	if input.Email != member.Email {
		existing, err := s.staff.ByEmail(input.Email)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, errs.Conflict("staff member %s already exists", input.Email)
		}
	}

	member.Email = input.Email
	member.Role = input.Role
	if input.Password != "" {
		hash, err := utils.HashPassword(input.Password)
		if err != nil {
			return nil, err
		}
		member.PasswordHash = hash
	}

	if err := s.staff.Update(member); err != nil {
		return nil, err
	}
	s.log.Infow("staff member updated", "email", member.Email, "role", member.Role)
	return member, nil
}

func (s *StaffService) Delete(id string) error {
	member, err := s.requireStaff(id)
	if err != nil {
		return err
	}
	if err := s.staff.Delete(member.ID); err != nil {
		return err
	}
	s.log.Infow("staff member deleted", "email", member.Email)
	return nil
}

func (s *StaffService) Get(id string) (*models.Staff, error) {
	return s.requireStaff(id)
}

func (s *StaffService) List(page int) (*StaffList, error) {
	if page < 0 {
		return nil, errs.BadRequest("page number cannot be negative")
	}
	staff, total, err := s.staff.List(page, staffPageSize)
	if err != nil {
		return nil, err
	}
	return &StaffList{Staff: staff, Total: total}, nil
}

func (s *StaffService) requireStaff(id string) (*models.Staff, error) {
	member, err := s.staff.ByID(id)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, errs.NotFound("staff member %s was not found", id)
	}
	return member, nil
}

func validRole(role string) error {
	if role != models.RoleAdministrator && role != models.RoleModerator {
		return errs.BadRequest("unknown role %q", role)
	}
	return nil
}
