package memory

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/flota-api/internal/domain"
	"github.com/jhoicas/flota-api/internal/domain/entity"
	"github.com/jhoicas/flota-api/internal/domain/repository"
	"github.com/jhoicas/flota-api/internal/domain/search"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo implementación en memoria de UserRepository.
type UserRepo struct{ v view }

func checkUser(st *state, u *entity.User) error {
	for _, other := range st.users {
		if other.ID != u.ID && strings.EqualFold(other.Email, u.Email) {
			return fmt.Errorf("%w: email duplicado", domain.ErrConflict)
		}
	}
	if _, ok := st.companies[u.CompanyID]; !ok {
		return fmt.Errorf("%w: empresa %s inexistente", domain.ErrConflict, u.CompanyID)
	}
	for _, id := range u.SecondaryCompanyIDs {
		if _, ok := st.companies[id]; !ok {
			return fmt.Errorf("%w: empresa %s inexistente", domain.ErrConflict, id)
		}
	}
	return nil
}

func (r *UserRepo) Create(_ context.Context, user *entity.User) error {
	return r.v.write(func(st *state) error {
		if _, ok := st.users[user.ID]; ok {
			return fmt.Errorf("%w: usuario %s ya existe", domain.ErrConflict, user.ID)
		}
		if err := checkUser(st, user); err != nil {
			return err
		}
		st.users[user.ID] = user.Clone()
		return nil
	})
}

func (r *UserRepo) Update(_ context.Context, user *entity.User) error {
	return r.v.write(func(st *state) error {
		if _, ok := st.users[user.ID]; !ok {
			return fmt.Errorf("%w: usuario %s", domain.ErrNotFound, user.ID)
		}
		if err := checkUser(st, user); err != nil {
			return err
		}
		st.users[user.ID] = user.Clone()
		return nil
	})
}

// Delete elimina al usuario y sus API keys.
func (r *UserRepo) Delete(_ context.Context, id string) error {
	return r.v.write(func(st *state) error {
		delete(st.users, id)
		for kid, k := range st.apiKeys {
			if k.UserID == id {
				delete(st.apiKeys, kid)
			}
		}
		return nil
	})
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	var out *entity.User
	err := r.v.read(func(st *state) error {
		out = st.users[id].Clone()
		return nil
	})
	return out, err
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	var out *entity.User
	err := r.v.read(func(st *state) error {
		for _, u := range st.users {
			if strings.EqualFold(u.Email, strings.TrimSpace(email)) {
				out = u.Clone()
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *UserRepo) Search(_ context.Context, companyID string, q search.Query[*entity.User]) (search.Result[*entity.User], error) {
	var items []*entity.User
	err := r.v.read(func(st *state) error {
		for _, u := range st.users {
			if u.CompanyID == companyID {
				items = append(items, u.Clone())
			}
		}
		return nil
	})
	return q.Apply(items), err
}

func (r *UserRepo) SearchAll(_ context.Context, q search.Query[*entity.User]) (search.Result[*entity.User], error) {
	var items []*entity.User
	err := r.v.read(func(st *state) error {
		for _, u := range st.users {
			items = append(items, u.Clone())
		}
		return nil
	})
	return q.Apply(items), err
}

func (r *UserRepo) CountActiveAdmins(_ context.Context) (int, error) {
	n := 0
	err := r.v.read(func(st *state) error {
		for _, u := range st.users {
			if u.IsActiveAdmin() {
				n++
			}
		}
		return nil
	})
	return n, err
}
