// Package avcme is a block motion-estimation engine for H.264 style video
// encoders.
//
// For every 16x16 luma macroblock of a picture it finds the motion that
// minimizes distortion plus lambda times motion-vector bits against one
// (P pictures) or two (B pictures) reference pictures. The search seeds
// from neighbor motion, refines with a full-pel diamond and a half-pel
// step, evaluates skip and direct motion, and for B pictures tries
// bi-predictive averages. Macroblocks are estimated in parallel along a
// wavefront; results do not depend on the number of workers.
//
// Basic usage:
//
//	est, err := avcme.NewEstimator(1280, 720, nil)
//	cur, _ := avcme.PictureFromImage(frame1)
//	ref, _ := avcme.PictureFromImage(frame0)
//	field, err := est.EstimateP(ctx, cur, ref)
//
// A Field can be stored with WriteTo and loaded with ReadField, and serves
// as the co-located field when estimating a B picture.
package avcme
