// internal/app/features/home/handler.go
package home

import (
	"net/http"

	"github.com/dalemusser/waffle/pantry/templates"
	uierrors "github.com/studypointin/studypoint/internal/app/features/errors"
	materialstore "github.com/studypointin/studypoint/internal/app/store/materials"
	subjectstore "github.com/studypointin/studypoint/internal/app/store/subjects"
	"github.com/studypointin/studypoint/internal/app/system/timeouts"
	"github.com/studypointin/studypoint/internal/app/system/viewdata"
	"github.com/studypointin/studypoint/internal/domain/models"
	"go.uber.org/zap"
)

// Handler holds dependencies needed to serve the landing page.
type Handler struct {
	Subjects  *subjectstore.Store
	Materials *materialstore.Store
	ErrLog    *uierrors.ErrorLogger
	Log       *zap.Logger
}

func NewHandler(subjects *subjectstore.Store, materials *materialstore.Store, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Subjects:  subjects,
		Materials: materials,
		ErrLog:    errLog,
		Log:       logger,
	}
}

// kindCount is one "12 Notes" line on a subject card.
type kindCount struct {
	Label string
	Count int64
}

type subjectCard struct {
	models.Subject
	Counts []kindCount
}

type homeData struct {
	viewdata.BaseVM
	Subjects []subjectCard
}

// ServeRoot handles GET /: one card per active subject, with the number of
// active materials per content kind.
func (h *Handler) ServeRoot(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "home: list subjects")
	defer cancel()

	subjects, err := h.Subjects.ListActive(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list subjects failed", err, "Unable to load subjects.", "/")
		return
	}

	counts, err := h.Materials.CountBySubject(ctx)
	if err != nil {
		// The cards are still useful without the numbers.
		h.Log.Warn("count materials failed", zap.Error(err))
		counts = nil
	}

	cards := make([]subjectCard, 0, len(subjects))
	for _, subj := range subjects {
		card := subjectCard{Subject: subj}
		for _, kind := range models.ContentKinds {
			if n := counts[subj.ID][kind]; n > 0 {
				card.Counts = append(card.Counts, kindCount{Label: models.KindLabel(kind), Count: n})
			}
		}
		cards = append(cards, card)
	}

	templates.Render(w, r, "home", homeData{
		BaseVM:   viewdata.NewBaseVM(r, "Welcome", "/"),
		Subjects: cards,
	})
}
