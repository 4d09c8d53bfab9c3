// Package imageio converts image files to pixel feature matrices for
// clustering and renders a quantized image from a clustering result.
//
// Pixels are read with the standard image decoders (PNG and JPEG are
// registered). Features are either raw RGB values in [0, 255] or CIE-Lab
// coordinates computed with go-colorful, where Euclidean distance tracks
// perceived color difference more closely.
//
//	pix, err := imageio.Read("photo.png")
//	...
//	res, err := kcluster.KMeans(ctx, pix.Matrix(imageio.Lab), 8)
//	...
//	out, err := imageio.Quantize(pix, res.Centroids, res.Labels, imageio.Lab)
//	...
//	err = imageio.Write("photo-8.png", out)
package imageio
