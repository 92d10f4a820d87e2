package main

import (
	"net/http"
	"time"

	"bitbucket.org/mmdatafocus/pos_backend/cart"
	"bitbucket.org/mmdatafocus/pos_backend/models"
	"bitbucket.org/mmdatafocus/pos_backend/utils"
	"bitbucket.org/mmdatafocus/pos_backend/workflow"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

func bindingError(c *gin.Context, err error) {
	if verr, ok := err.(validator.ValidationErrors); ok {
		c.JSON(http.StatusBadRequest, gin.H{"errors": utils.ProcessValidationErrors(verr)})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
}

func listPosProfilesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		profiles, err := models.ListPosProfiles(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, profiles)
	}
}

func getPosProfileHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		profile, err := models.GetPosProfile(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, profile)
	}
}

func createPosProfileHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewPosProfile
		if err := c.ShouldBindJSON(&input); err != nil {
			bindingError(c, err)
			return
		}
		profile, err := models.CreatePosProfile(c.Request.Context(), &input)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, profile)
	}
}

func updatePosProfileHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		var input models.NewPosProfile
		if err := c.ShouldBindJSON(&input); err != nil {
			bindingError(c, err)
			return
		}
		profile, err := models.UpdatePosProfile(c.Request.Context(), id, &input)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, profile)
	}
}

func deletePosProfileHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		profile, err := models.DeletePosProfile(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, profile)
	}
}

func createPaymentMethodHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewPaymentMethod
		if err := c.ShouldBindJSON(&input); err != nil {
			bindingError(c, err)
			return
		}
		method, err := models.CreatePaymentMethod(c.Request.Context(), &input)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, method)
	}
}

func updatePaymentMethodHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		var input models.NewPaymentMethod
		if err := c.ShouldBindJSON(&input); err != nil {
			bindingError(c, err)
			return
		}
		method, err := models.UpdatePaymentMethod(c.Request.Context(), id, &input)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, method)
	}
}

func deletePaymentMethodHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		method, err := models.DeletePaymentMethod(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, method)
	}
}

func offerCatalogHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		offers, err := models.ActiveOfferCandidates(c.Request.Context(), time.Now().UTC())
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, offers)
	}
}

func createPosOfferHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewPosOffer
		if err := c.ShouldBindJSON(&input); err != nil {
			bindingError(c, err)
			return
		}
		offer, err := models.CreatePosOffer(c.Request.Context(), &input)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, offer)
	}
}

func updatePosOfferHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		var input models.NewPosOffer
		if err := c.ShouldBindJSON(&input); err != nil {
			bindingError(c, err)
			return
		}
		offer, err := models.UpdatePosOffer(c.Request.Context(), id, &input)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, offer)
	}
}

func deletePosOfferHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		offer, err := models.DeletePosOffer(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, offer)
	}
}

type cartPreviewRequest struct {
	PosProfileId int                `json:"pos_profile_id" binding:"required"`
	Draft        *cart.DraftInvoice `json:"draft" binding:"required"`
	// applied offer names the user has toggled on
	AppliedOffers []string `json:"applied_offers"`
	ToggleOffer   string   `json:"toggle_offer"`
	SeedPayments  bool     `json:"seed_payments"`
}

// cartPreviewHandler recomputes the draft server-side: totals, offer
// pipeline, and optionally a fresh payment split. Pure calculation, no
// persistence.
func cartPreviewHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req cartPreviewRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindingError(c, err)
			return
		}

		profile, err := models.GetPosProfile(c.Request.Context(), req.PosProfileId)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		cfg := profile.CartConfig()

		offers, err := models.ActiveOfferCandidates(c.Request.Context(), time.Now().UTC())
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		draft := req.Draft
		draft.Recalculate(cfg)

		if len(req.AppliedOffers) == 0 && req.ToggleOffer == "" {
			cart.InitCatalog(offers, draft)
		} else {
			applied := map[string]bool{}
			for _, name := range req.AppliedOffers {
				applied[name] = true
			}
			cart.RefreshEligibility(offers, draft)
			for _, o := range offers {
				o.Applied = applied[o.Name] && o.Eligible && !o.Disabled()
			}
		}

		var notices []cart.Notice
		if req.ToggleOffer != "" {
			notices = cart.ToggleOffer(offers, req.ToggleOffer, draft, cfg)
		} else {
			notices = cart.ApplyOffers(offers, draft, cfg)
		}

		if req.SeedPayments {
			modes, err := models.TenderModes(c.Request.Context(), req.PosProfileId)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			draft.SeedPayments(modes, cfg)
		}

		c.JSON(http.StatusOK, gin.H{
			"draft":   draft,
			"offers":  offers,
			"notices": notices,
		})
	}
}

func openShiftHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewPosShift
		if err := c.ShouldBindJSON(&input); err != nil {
			bindingError(c, err)
			return
		}
		if input.TerminalId == 0 {
			if terminalId, ok := utils.GetTerminalIdFromContext(c.Request.Context()); ok {
				input.TerminalId = terminalId
			}
		}
		shift, err := models.OpenPosShift(c.Request.Context(), &input)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, shift)
	}
}

func closeShiftHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input workflow.CloseShiftInput
		if err := c.ShouldBindJSON(&input); err != nil {
			bindingError(c, err)
			return
		}
		shift, err := workflow.CloseShift(c.Request.Context(), &input)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, shift)
	}
}

func getShiftHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		shift, err := models.GetPosShift(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, shift)
	}
}

func shiftInvoicesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		invoices, err := models.ListShiftInvoices(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, invoices)
	}
}

func shiftReportHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		shift, err := models.GetPosShift(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		f, err := workflow.ClosingReportExcel(shift)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Disposition", "attachment; filename=shift-report.xlsx")
		if err := f.Write(c.Writer); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to write file"})
		}
	}
}
