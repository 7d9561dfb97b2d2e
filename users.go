package main

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Dispatcher for /users/* to route profile views
func usersDispatcher(store AttributeStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		if len(parts) == 3 && parts[0] == "users" && parts[2] == "profile" {
			userProfileHandler(store).ServeHTTP(w, r)
			return
		}
		http.NotFound(w, r)
	}
}

// GET /users/{id}/profile: a candidate's assembled profile. Hydration
// goes through the per-request dataloaders so concurrent profile fetches
// collapse into one store query per attribute kind. The HIV status is
// only included under the symmetric-disclosure rule.
func userProfileHandler(store AttributeStore) http.HandlerFunc {
	return authenticate(func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		targetID, err := strconv.Atoi(parts[1])
		if err != nil {
			http.NotFound(w, r)
			return
		}
		requesterID := r.Context().Value(userIDKey).(int)

		loaders := GetDataLoadersFromContext(r.Context())
		if loaders == nil {
			loaders = NewDataLoaders(store)
		}

		ctx := r.Context()
		identThunk := loaders.IdentityLoader.Load(ctx, targetID)
		personalThunk := loaders.PersonalLoader.Load(ctx, targetID)
		healthThunk := loaders.HealthLoader.Load(ctx, targetID)
		educationThunk := loaders.EducationLoader.Load(ctx, targetID)
		professionThunk := loaders.ProfessionLoader.Load(ctx, targetID)
		requesterHealthThunk := loaders.HealthLoader.Load(ctx, requesterID)

		ident, err := identThunk()
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				writeError(w, http.StatusNotFound, "not_found")
			} else {
				writeTaxonomyError(w, err)
			}
			return
		}
		personal, err := personalThunk()
		if err != nil {
			writeTaxonomyError(w, err)
			return
		}
		health, err := healthThunk()
		if err != nil {
			writeTaxonomyError(w, err)
			return
		}
		education, err := educationThunk()
		if err != nil {
			writeTaxonomyError(w, err)
			return
		}
		profession, err := professionThunk()
		if err != nil {
			writeTaxonomyError(w, err)
			return
		}
		requesterHealth, err := requesterHealthThunk()
		if err != nil {
			writeTaxonomyError(w, err)
			return
		}

		view := CandidateView{
			Identity:   *ident,
			Personal:   personal,
			Health:     health,
			Education:  education,
			Profession: profession,
		}

		resp := map[string]interface{}{
			"id":        ident.ID,
			"full_name": ident.FullName,
			"gender":    ident.Gender,
		}
		if age := view.Age(time.Now()); age >= 0 {
			resp["age"] = age
		}
		if personal != nil {
			if personal.Religion != nil {
				resp["religion"] = *personal.Religion
			}
			if personal.SubCaste != nil {
				resp["sub_caste"] = *personal.SubCaste
			}
			if personal.City != nil {
				resp["city"] = *personal.City
			}
			if personal.State != nil {
				resp["state"] = *personal.State
			}
			if personal.HeightCM != nil {
				resp["height_cm"] = *personal.HeightCM
			}
			if personal.MaritalStatus != nil {
				resp["marital_status"] = *personal.MaritalStatus
			}
		}
		if education != nil && education.HighestLevel != nil {
			resp["education"] = *education.HighestLevel
		}
		if profession != nil {
			if profession.Occupation != nil {
				resp["occupation"] = *profession.Occupation
			}
			if profession.Organization != nil {
				resp["organization"] = *profession.Organization
			}
		}
		if health != nil {
			if health.Diet != nil {
				resp["diet"] = *health.Diet
			}
			// Sensitive attribute: visible only when the requester's own
			// disclosure matches the target's.
			if canSeeSensitiveHealth(requesterHealth, health) {
				resp["hiv_status"] = *health.HIVStatus
			}
		}

		writeJSON(w, http.StatusOK, resp)
	})
}

func meHandler(store AttributeStore) http.HandlerFunc {
	return authenticate(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value(userIDKey).(int)

		ident, err := store.GetIdentities(r.Context(), []int{userID})
		if err != nil {
			writeTaxonomyError(w, err)
			return
		}
		me, ok := ident[userID]
		if !ok {
			writeError(w, http.StatusNotFound, "not_found")
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"id":        me.ID,
			"email":     me.Email,
			"full_name": me.FullName,
			"gender":    me.Gender,
		})
	})
}
